package store

import (
	"context"
	"time"
)

// Rating is one user's explicit feedback on one content item, in [-1, 1] with
// 3-decimal precision. At most one rating exists per (user, content) pair.
type Rating struct {
	ID        int32
	UserID    string
	ContentID int32
	Rating    float64
	Timestamp time.Time
}

// UpsertRating is the upsert payload for a rating. An existing rating for the
// same (user, content) pair is updated in place.
type UpsertRating struct {
	UserID    string
	ContentID int32
	Rating    float64
}

// UpsertRating inserts the rating or replaces the existing one for the same
// (user, content) pair.
func (s *Store) UpsertRating(ctx context.Context, upsert *UpsertRating) (*Rating, error) {
	return s.driver.UpsertRating(ctx, upsert)
}

// GetRating returns the rating for the (user, content) pair, or nil when the
// user has not rated the item.
func (s *Store) GetRating(ctx context.Context, userID string, contentID int32) (*Rating, error) {
	return s.driver.GetRating(ctx, userID, contentID)
}
