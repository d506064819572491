package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionPresence is a Redis-backed view of whether a user currently has a
// live session with the external identity provider. The server only reads
// and refreshes presence keys; it never creates sessions.
type SessionPresence struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionPresence(redisURL string, ttl time.Duration) (*SessionPresence, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &SessionPresence{
		client: client,
		ttl:    ttl,
	}, nil
}

func presenceKey(userID string) string {
	return fmt.Sprintf("presence:%s", userID)
}

// Touch marks the user's session as recently active.
func (sp *SessionPresence) Touch(ctx context.Context, userID string) error {
	return sp.client.Set(ctx, presenceKey(userID), time.Now().UTC().Format(time.RFC3339), sp.ttl).Err()
}

// IsActive reports whether a presence key for the user exists.
func (sp *SessionPresence) IsActive(ctx context.Context, userID string) (bool, error) {
	n, err := sp.client.Exists(ctx, presenceKey(userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (sp *SessionPresence) Close() error {
	return sp.client.Close()
}
