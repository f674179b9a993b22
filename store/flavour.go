package store

import (
	"context"
	"time"
)

// Flavour is an alternate reference embedding scoped to a user. It is seeded
// from a single content item and then adjusted by feedback independently of
// the user's primary embedding.
type Flavour struct {
	ID        int32
	UserID    string
	Nickname  string
	Embedding []float32
	CreatedAt time.Time
}

// FindFlavour is the find condition for flavours.
type FindFlavour struct {
	ID     *int32
	UserID *string
}

// CreateFlavour inserts a flavour row and returns it with the assigned id.
func (s *Store) CreateFlavour(ctx context.Context, create *Flavour) (*Flavour, error) {
	return s.driver.CreateFlavour(ctx, create)
}

// GetFlavour returns a single flavour, or nil when absent.
func (s *Store) GetFlavour(ctx context.Context, id int32) (*Flavour, error) {
	list, err := s.driver.ListFlavours(ctx, &FindFlavour{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// ListFlavours lists flavours matching the find condition.
func (s *Store) ListFlavours(ctx context.Context, find *FindFlavour) ([]*Flavour, error) {
	return s.driver.ListFlavours(ctx, find)
}

// UpdateFlavourEmbedding replaces a flavour's reference embedding.
func (s *Store) UpdateFlavourEmbedding(ctx context.Context, id int32, embedding []float32) error {
	return s.driver.UpdateFlavourEmbedding(ctx, id, embedding)
}

// DeleteFlavour deletes a flavour row.
func (s *Store) DeleteFlavour(ctx context.Context, id int32) error {
	return s.driver.DeleteFlavour(ctx, id)
}
