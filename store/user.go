package store

import (
	"context"
)

// User is a feed consumer. The embedding is nil until onboarding completes;
// afterwards it is the unit-norm reference embedding recommendations are
// searched against.
type User struct {
	ID        string
	Embedding []float32
	CreatedTs int64
}

// HasEmbedding reports whether the user completed onboarding.
func (u *User) HasEmbedding() bool {
	return len(u.Embedding) > 0
}

// CreateUser creates a user row. The id is caller-supplied (it comes from the
// identity provider's subject claim).
func (s *Store) CreateUser(ctx context.Context, create *User) (*User, error) {
	return s.driver.CreateUser(ctx, create)
}

// GetUser returns the user with the given id, or nil when absent.
func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	return s.driver.GetUser(ctx, id)
}

// GetOrCreateUser loads a user, provisioning the row on first contact.
func (s *Store) GetOrCreateUser(ctx context.Context, id string) (*User, error) {
	user, err := s.driver.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}
	return s.driver.CreateUser(ctx, &User{ID: id})
}

// UpdateUserEmbedding replaces the user's reference embedding.
func (s *Store) UpdateUserEmbedding(ctx context.Context, id string, embedding []float32) error {
	return s.driver.UpdateUserEmbedding(ctx, id, embedding)
}
