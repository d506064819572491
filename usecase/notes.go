package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/josswuzhur/cloud-notes-app/model"
	"github.com/josswuzhur/cloud-notes-app/utils"
)

// Validation failures are client errors; everything else coming out of the
// store is a server error. Handlers tell them apart with errors.Is.
var (
	ErrEmptyText   = errors.New("note text is required")
	ErrTextTooLong = errors.New("note text exceeds maximum length")
	ErrNoteLimit   = errors.New("user has reached maximum note limit")
)

const maxNotesPerUser = 1000

// NotesStore is the mutation surface of the notes repository.
type NotesStore interface {
	CreateNote(ctx context.Context, note *model.Note) error
	GetNote(ctx context.Context, noteID string, userID string) (*model.Note, error)
	UpdateNoteText(ctx context.Context, noteID string, userID string, text string) (*model.Note, error)
	DeleteNote(ctx context.Context, noteID string, userID string) error
	CountUserNotes(ctx context.Context, userID string) (int, error)
}

type NoteService struct {
	NotesRepo NotesStore
}

func validateText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyText
	}
	if len(text) > utils.MaxNoteTextLength {
		return "", ErrTextTooLong
	}
	return text, nil
}

// CreateNote validates the text and inserts a new note for the user. The
// store assigns the id and creation instant; callers observe the resulting
// state change through the change feed, not through this call.
func (svc *NoteService) CreateNote(ctx context.Context, userID string, text string) (*model.Note, error) {
	text, err := validateText(text)
	if err != nil {
		return nil, err
	}

	count, err := svc.NotesRepo.CountUserNotes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count notes: %w", err)
	}
	if count >= maxNotesPerUser {
		return nil, ErrNoteLimit
	}

	note := &model.Note{
		UserID: userID,
		Text:   text,
	}
	if err := svc.NotesRepo.CreateNote(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// UpdateNote replaces the text of an existing note. A missing id surfaces as
// the store's not-found error, distinct from validation failure.
func (svc *NoteService) UpdateNote(ctx context.Context, noteID string, userID string, text string) (*model.Note, error) {
	text, err := validateText(text)
	if err != nil {
		return nil, err
	}
	return svc.NotesRepo.UpdateNoteText(ctx, noteID, userID, text)
}

// DeleteNote removes a note. Deleting an id that no longer exists is not an
// error.
func (svc *NoteService) DeleteNote(ctx context.Context, noteID string, userID string) error {
	return svc.NotesRepo.DeleteNote(ctx, noteID, userID)
}
