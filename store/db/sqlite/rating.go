package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/gourmet/store"
)

// UpsertRating inserts a rating or replaces the existing one for the same
// (user, content) pair.
func (d *DB) UpsertRating(ctx context.Context, upsert *store.UpsertRating) (*store.Rating, error) {
	stmt := `
		INSERT INTO user_content_rating (user_id, content_id, rating)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, content_id)
		DO UPDATE SET
			rating = EXCLUDED.rating,
			timestamp = strftime('%s', 'now')
		RETURNING id, timestamp
	`

	rating := &store.Rating{
		UserID:    upsert.UserID,
		ContentID: upsert.ContentID,
		Rating:    upsert.Rating,
	}
	var timestamp int64
	err := d.db.QueryRowContext(ctx, stmt, upsert.UserID, upsert.ContentID, upsert.Rating).
		Scan(&rating.ID, &timestamp)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert rating")
	}
	rating.Timestamp = time.Unix(timestamp, 0)
	return rating, nil
}

// GetRating returns the rating for the (user, content) pair, or nil when the
// pair is unrated.
func (d *DB) GetRating(ctx context.Context, userID string, contentID int32) (*store.Rating, error) {
	query := `
		SELECT id, user_id, content_id, rating, timestamp
		FROM user_content_rating
		WHERE user_id = ? AND content_id = ?
	`

	rating := &store.Rating{}
	var timestamp int64
	err := d.db.QueryRowContext(ctx, query, userID, contentID).Scan(
		&rating.ID,
		&rating.UserID,
		&rating.ContentID,
		&rating.Rating,
		&timestamp,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get rating")
	}
	rating.Timestamp = time.Unix(timestamp, 0)
	return rating, nil
}
