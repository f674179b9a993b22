package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/hrygo/gourmet/store"
)

// GetContent returns the content with the given id, or nil when absent.
func (d *DB) GetContent(ctx context.Context, id int32) (*store.Content, error) {
	query := `
		SELECT id, content_type, title, url, description, COALESCE(source_id, 0), date, embedding, media
		FROM content
		WHERE id = ` + placeholder(1)

	content := &store.Content{}
	var embedding nullVector
	var media []byte
	err := d.db.QueryRowContext(ctx, query, id).Scan(
		&content.ID,
		&content.ContentType,
		&content.Title,
		&content.URL,
		&content.Description,
		&content.SourceID,
		&content.Date,
		&embedding,
		&media,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get content")
	}

	content.Embedding = embedding.Slice()
	content.Media = media
	return content, nil
}

// ListContentByIDs returns the content rows for the given ids.
func (d *DB) ListContentByIDs(ctx context.Context, ids []int32) ([]*store.Content, error) {
	query := `
		SELECT id, content_type, title, url, description, COALESCE(source_id, 0), date, embedding, media
		FROM content
		WHERE id = ANY(` + placeholder(1) + `)`

	rows, err := d.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list content")
	}
	defer rows.Close()

	list := []*store.Content{}
	for rows.Next() {
		content := &store.Content{}
		var embedding nullVector
		var media []byte
		if err := rows.Scan(
			&content.ID,
			&content.ContentType,
			&content.Title,
			&content.URL,
			&content.Description,
			&content.SourceID,
			&content.Date,
			&embedding,
			&media,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan content")
		}
		content.Embedding = embedding.Slice()
		content.Media = media
		list = append(list, content)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// SearchContentCandidates finds content near the reference embedding.
// Down-rated content is excluded via the ratings join; unrated and up-rated
// content stays eligible. The returned distance is the raw L2 distance, the
// age penalty is applied by the caller.
func (d *DB) SearchContentCandidates(ctx context.Context, find *store.FindContentCandidates) ([]*store.ContentCandidate, error) {
	query := `
		SELECT c.id, c.date, c.embedding <-> ` + placeholder(1) + ` AS distance
		FROM content c
		LEFT JOIN user_content_rating ucr ON c.id = ucr.content_id AND ucr.user_id = ` + placeholder(2) + `
		WHERE c.date >= ` + placeholder(3) + `
		AND NOT (c.id = ANY(` + placeholder(4) + `))
		AND (ucr.rating IS NULL OR ucr.rating >= 0)
		AND c.embedding IS NOT NULL
		AND c.embedding <-> ` + placeholder(1) + ` < ` + placeholder(5) + `
		ORDER BY c.embedding <-> ` + placeholder(1) + `
		LIMIT ` + placeholder(6)

	// A nil slice would encode as SQL NULL and `NOT (id = ANY(NULL))` filters
	// every row.
	excludedIDs := find.ExcludedIDs
	if excludedIDs == nil {
		excludedIDs = []int32{}
	}

	vector := pgvector.NewVector(find.Embedding)
	rows, err := d.db.QueryContext(ctx, query,
		vector,
		find.UserID,
		find.Since,
		pq.Array(excludedIDs),
		find.MaxDistance,
		find.Limit,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search content candidates")
	}
	defer rows.Close()

	list := []*store.ContentCandidate{}
	for rows.Next() {
		candidate := &store.ContentCandidate{}
		if err := rows.Scan(&candidate.ID, &candidate.Date, &candidate.Distance); err != nil {
			return nil, errors.Wrap(err, "failed to scan content candidate")
		}
		list = append(list, candidate)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// SampleContent draws a uniform random sample of content whose embedding is at
// least MinDistance away from every embedding of the known set.
func (d *DB) SampleContent(ctx context.Context, sample *store.SampleDistantContent) ([]*store.Content, error) {
	query := `
		WITH known_embeddings AS (
			SELECT embedding
			FROM content
			WHERE id = ANY(` + placeholder(1) + `)
			AND embedding IS NOT NULL
		)
		SELECT c.id
		FROM content c
		WHERE c.embedding IS NOT NULL
		AND NOT (c.id = ANY(` + placeholder(1) + `))
		AND NOT EXISTS (
			SELECT 1
			FROM known_embeddings k
			WHERE c.embedding <-> k.embedding < ` + placeholder(2) + `
		)
		ORDER BY RANDOM()
		LIMIT ` + placeholder(3)

	knownIDs := sample.KnownIDs
	if knownIDs == nil {
		knownIDs = []int32{}
	}

	rows, err := d.db.QueryContext(ctx, query, pq.Array(knownIDs), sample.MinDistance, sample.Limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sample content")
	}
	defer rows.Close()

	ids := []int32{}
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "failed to scan sampled content id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return []*store.Content{}, nil
	}
	return d.ListContentByIDs(ctx, ids)
}

// ListRatedContent hydrates content rows with the user's ratings. With IDs set
// it is a plain id-set lookup; with NearestTo set it returns the closest rows
// ordered by distance.
func (d *DB) ListRatedContent(ctx context.Context, find *store.FindRatedContent) ([]*store.RatedContent, error) {
	query := `
		SELECT
			c.id, c.content_type, c.title, c.url, c.description, COALESCE(c.source_id, 0), c.date, c.media,
			COALESCE(s.url, '') AS source_url,
			COALESCE(ucr.rating, 0) AS rating
		FROM content c
		LEFT JOIN user_content_rating ucr ON c.id = ucr.content_id AND ucr.user_id = ` + placeholder(1) + `
		LEFT JOIN source s ON c.source_id = s.id
	`

	args := []any{find.UserID}
	switch {
	case len(find.IDs) > 0:
		query += ` WHERE c.id = ANY(` + placeholder(2) + `)`
		args = append(args, pq.Array(find.IDs))
	case len(find.NearestTo) > 0:
		query += `
		WHERE c.embedding IS NOT NULL
		ORDER BY c.embedding <-> ` + placeholder(2) + ` ASC
		LIMIT ` + placeholder(3)
		args = append(args, pgvector.NewVector(find.NearestTo), find.Limit)
	default:
		return nil, errors.New("either ids or nearest-to embedding required")
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list rated content")
	}
	defer rows.Close()

	list := []*store.RatedContent{}
	for rows.Next() {
		rated := &store.RatedContent{Content: &store.Content{}}
		var media []byte
		if err := rows.Scan(
			&rated.Content.ID,
			&rated.Content.ContentType,
			&rated.Content.Title,
			&rated.Content.URL,
			&rated.Content.Description,
			&rated.Content.SourceID,
			&rated.Content.Date,
			&media,
			&rated.SourceURL,
			&rated.Rating,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan rated content")
		}
		rated.Content.Media = media
		list = append(list, rated)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteContentBefore removes content published before the cutoff.
func (d *DB) DeleteContentBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	stmt := `DELETE FROM content WHERE date < ` + placeholder(1)
	result, err := d.db.ExecContext(ctx, stmt, cutoff)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete old content")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to count deleted content")
	}
	return rows, nil
}
