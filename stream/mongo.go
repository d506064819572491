package stream

import (
	"context"

	"github.com/josswuzhur/cloud-notes-app/model"
	"github.com/josswuzhur/cloud-notes-app/repository"
)

type mongoStore struct {
	repo *repository.NotesRepo
}

// NewStore adapts the notes repository to the live-query Store contract.
func NewStore(repo *repository.NotesRepo) Store {
	return &mongoStore{repo: repo}
}

func (s *mongoStore) Snapshot(ctx context.Context, userID string) ([]*model.Note, error) {
	return s.repo.Snapshot(ctx, userID)
}

func (s *mongoStore) Watch(ctx context.Context) (Feed, error) {
	cs, err := s.repo.Watch(ctx)
	if err != nil {
		return nil, err
	}
	return cs, nil
}
