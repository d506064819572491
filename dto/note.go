package dto

import (
	"sort"
	"time"

	"github.com/josswuzhur/cloud-notes-app/model"
)

type CreateNoteRequest struct {
	Text string `json:"text" binding:"required,notetext"`
}

type UpdateNoteRequest struct {
	Text string `json:"text" binding:"required,notetext"`
}

// NoteResponse is the wire shape pushed to clients. Date is the display
// string, CreatedAt the machine-sortable key in unix milliseconds.
type NoteResponse struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Date      string `json:"date"`
	CreatedAt int64  `json:"createdAt,omitempty"`
}

// Convert a single note to NoteResponse
func ToNoteResponse(note *model.Note) NoteResponse {
	instant := note.CreationInstant(time.Now())
	return NoteResponse{
		ID:        note.ID,
		Text:      note.Text,
		Date:      instant.Format("2006-01-02"),
		CreatedAt: instant.UnixMilli(),
	}
}

// ToSnapshot converts a full collection read into the ordered sequence
// delivered to clients: newest first, stable for equal instants. Re-sorting
// here keeps the invariant even when a fallback instant was synthesized after
// the store-side ordered query ran.
func ToSnapshot(notes []*model.Note) []NoteResponse {
	responses := make([]NoteResponse, len(notes))
	for i, note := range notes {
		responses[i] = ToNoteResponse(note)
	}
	sort.SliceStable(responses, func(i, j int) bool {
		return responses[i].CreatedAt > responses[j].CreatedAt
	})
	return responses
}
