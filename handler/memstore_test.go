package handler

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/josswuzhur/cloud-notes-app/model"
	"github.com/josswuzhur/cloud-notes-app/repository"
	"github.com/josswuzhur/cloud-notes-app/stream"

	"github.com/google/uuid"
)

// memStore is an in-memory stand-in for the Mongo repository: it implements
// both the mutation surface and the live-query store, with a working change
// feed, so handler tests can run the whole loop over real HTTP.
type memStore struct {
	mu    sync.Mutex
	notes map[string]*model.Note
	feeds map[*memFeed]struct{}

	subscribes   atomic.Int32
	unsubscribes atomic.Int32
}

func newMemStore() *memStore {
	return &memStore{
		notes: map[string]*model.Note{},
		feeds: map[*memFeed]struct{}{},
	}
}

type memFeed struct {
	store  *memStore
	events chan struct{}
	once   sync.Once
}

func (f *memFeed) Next(ctx context.Context) bool {
	select {
	case _, ok := <-f.events:
		return ok
	case <-ctx.Done():
		return false
	}
}

func (f *memFeed) Err() error { return nil }

func (f *memFeed) Close(ctx context.Context) error {
	f.once.Do(func() {
		f.store.mu.Lock()
		delete(f.store.feeds, f)
		f.store.mu.Unlock()
		f.store.unsubscribes.Add(1)
	})
	return nil
}

func (s *memStore) Watch(ctx context.Context) (stream.Feed, error) {
	feed := &memFeed{store: s, events: make(chan struct{}, 64)}
	s.mu.Lock()
	s.feeds[feed] = struct{}{}
	s.mu.Unlock()
	s.subscribes.Add(1)
	return feed, nil
}

func (s *memStore) Snapshot(ctx context.Context, userID string) ([]*model.Note, error) {
	return s.ListNotes(ctx, userID)
}

// notify fires the change feed for every subscriber. Callers hold no lock.
func (s *memStore) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for feed := range s.feeds {
		select {
		case feed.events <- struct{}{}:
		default:
		}
	}
}

func (s *memStore) CreateNote(ctx context.Context, note *model.Note) error {
	note.ID = uuid.New().String()
	now := time.Now().UTC()
	note.CreatedAt = now
	note.UpdatedAt = now

	s.mu.Lock()
	copied := *note
	s.notes[note.ID] = &copied
	s.mu.Unlock()

	s.notify()
	return nil
}

func (s *memStore) GetNote(ctx context.Context, noteID string, userID string) (*model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	note, ok := s.notes[noteID]
	if !ok || note.UserID != userID {
		return nil, repository.ErrNoteNotFound
	}
	copied := *note
	return &copied, nil
}

func (s *memStore) UpdateNoteText(ctx context.Context, noteID string, userID string, text string) (*model.Note, error) {
	s.mu.Lock()
	note, ok := s.notes[noteID]
	if !ok || note.UserID != userID {
		s.mu.Unlock()
		return nil, repository.ErrNoteNotFound
	}
	note.Text = text
	note.UpdatedAt = time.Now().UTC()
	copied := *note
	s.mu.Unlock()

	s.notify()
	return &copied, nil
}

func (s *memStore) DeleteNote(ctx context.Context, noteID string, userID string) error {
	s.mu.Lock()
	note, ok := s.notes[noteID]
	if ok && note.UserID == userID {
		delete(s.notes, noteID)
	}
	s.mu.Unlock()

	if ok {
		s.notify()
	}
	return nil
}

func (s *memStore) ListNotes(ctx context.Context, userID string) ([]*model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*model.Note{}
	for _, note := range s.notes {
		if note.UserID == userID {
			copied := *note
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *memStore) CountUserNotes(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, note := range s.notes {
		if note.UserID == userID {
			n++
		}
	}
	return n, nil
}
