package model

import (
	"time"
)

type Note struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Text      string    `bson:"text" json:"text" binding:"required"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// CreationInstant is the snapshot sort key. The creation timestamp is assigned
// server-side at insert, but a note read back before that write is fully
// committed can carry a zero timestamp; fall back to the given instant so the
// note still sorts sensibly until the real value lands.
func (n *Note) CreationInstant(fallback time.Time) time.Time {
	if n.CreatedAt.IsZero() {
		return fallback
	}
	return n.CreatedAt
}
