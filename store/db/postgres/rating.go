package postgres

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/hrygo/gourmet/store"
)

// UpsertRating inserts a rating or replaces the existing one for the same
// (user, content) pair. The unique constraint keeps the pair single-rowed.
func (d *DB) UpsertRating(ctx context.Context, upsert *store.UpsertRating) (*store.Rating, error) {
	stmt := `
		INSERT INTO user_content_rating (user_id, content_id, rating)
		VALUES (` + placeholders(3) + `)
		ON CONFLICT (user_id, content_id)
		DO UPDATE SET
			rating = EXCLUDED.rating,
			timestamp = NOW()
		RETURNING id, timestamp
	`

	rating := &store.Rating{
		UserID:    upsert.UserID,
		ContentID: upsert.ContentID,
		Rating:    upsert.Rating,
	}
	err := d.db.QueryRowContext(ctx, stmt, upsert.UserID, upsert.ContentID, upsert.Rating).
		Scan(&rating.ID, &rating.Timestamp)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert rating")
	}
	return rating, nil
}

// GetRating returns the rating for the (user, content) pair, or nil when the
// pair is unrated.
func (d *DB) GetRating(ctx context.Context, userID string, contentID int32) (*store.Rating, error) {
	query := `
		SELECT id, user_id, content_id, rating, timestamp
		FROM user_content_rating
		WHERE user_id = ` + placeholder(1) + ` AND content_id = ` + placeholder(2)

	rating := &store.Rating{}
	err := d.db.QueryRowContext(ctx, query, userID, contentID).Scan(
		&rating.ID,
		&rating.UserID,
		&rating.ContentID,
		&rating.Rating,
		&rating.Timestamp,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get rating")
	}
	return rating, nil
}
