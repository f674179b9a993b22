package sqlite

import (
	"context"
	"database/sql"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/gourmet/store"
)

func idPlaceholders(ids []int32) (string, []any) {
	marks := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		marks[i] = "?"
		args[i] = id
	}
	return strings.Join(marks, ", "), args
}

func scanContent(rows *sql.Rows, d *DB) (*store.Content, error) {
	content := &store.Content{}
	var blob []byte
	var media sql.NullString
	var date int64
	if err := rows.Scan(
		&content.ID,
		&content.ContentType,
		&content.Title,
		&content.URL,
		&content.Description,
		&content.SourceID,
		&date,
		&blob,
		&media,
	); err != nil {
		return nil, errors.Wrap(err, "failed to scan content")
	}
	content.Date = time.Unix(date, 0)
	if media.Valid {
		content.Media = []byte(media.String)
	}
	if blob != nil {
		embedding, err := d.blobToVector(blob)
		if err != nil {
			return nil, err
		}
		content.Embedding = embedding
	}
	return content, nil
}

const contentFields = `id, content_type, title, url, description, COALESCE(source_id, 0), date, embedding, media`

// GetContent returns the content with the given id, or nil when absent.
func (d *DB) GetContent(ctx context.Context, id int32) (*store.Content, error) {
	list, err := d.ListContentByIDs(ctx, []int32{id})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// ListContentByIDs returns the content rows for the given ids.
func (d *DB) ListContentByIDs(ctx context.Context, ids []int32) ([]*store.Content, error) {
	marks, args := idPlaceholders(ids)
	query := `SELECT ` + contentFields + ` FROM content WHERE id IN (` + marks + `)`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list content")
	}
	defer rows.Close()

	list := []*store.Content{}
	for rows.Next() {
		content, err := scanContent(rows, d)
		if err != nil {
			return nil, err
		}
		list = append(list, content)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// SearchContentCandidates finds content near the reference embedding. The
// distance computation runs in the application layer; filters mirror the
// Postgres driver (date window, exclusions, down-rating gate).
func (d *DB) SearchContentCandidates(ctx context.Context, find *store.FindContentCandidates) ([]*store.ContentCandidate, error) {
	query := `
		SELECT c.id, c.date, c.embedding
		FROM content c
		LEFT JOIN user_content_rating ucr ON c.id = ucr.content_id AND ucr.user_id = ?
		WHERE c.date >= ?
		AND (ucr.rating IS NULL OR ucr.rating >= 0)
		AND c.embedding IS NOT NULL
	`

	rows, err := d.db.QueryContext(ctx, query, find.UserID, find.Since.Unix())
	if err != nil {
		return nil, errors.Wrap(err, "failed to search content candidates")
	}
	defer rows.Close()

	excluded := make(map[int32]struct{}, len(find.ExcludedIDs))
	for _, id := range find.ExcludedIDs {
		excluded[id] = struct{}{}
	}

	list := []*store.ContentCandidate{}
	for rows.Next() {
		var id int32
		var date int64
		var blob []byte
		if err := rows.Scan(&id, &date, &blob); err != nil {
			return nil, errors.Wrap(err, "failed to scan content candidate")
		}
		if _, ok := excluded[id]; ok {
			continue
		}
		embedding, err := d.blobToVector(blob)
		if err != nil {
			return nil, err
		}
		distance := l2Distance(embedding, find.Embedding)
		if distance >= find.MaxDistance {
			continue
		}
		list = append(list, &store.ContentCandidate{ID: id, Date: time.Unix(date, 0), Distance: distance})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(list, func(i, j int) bool { return list[i].Distance < list[j].Distance })
	if len(list) > find.Limit {
		list = list[:find.Limit]
	}
	return list, nil
}

// SampleContent draws a uniform random sample of content whose embedding is at
// least MinDistance away from every embedding of the known set.
func (d *DB) SampleContent(ctx context.Context, sample *store.SampleDistantContent) ([]*store.Content, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT id, embedding FROM content WHERE embedding IS NOT NULL`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sample content")
	}
	defer rows.Close()

	known := make(map[int32]struct{}, len(sample.KnownIDs))
	for _, id := range sample.KnownIDs {
		known[id] = struct{}{}
	}

	type embeddedContent struct {
		id        int32
		embedding []float32
	}
	knownEmbeddings := [][]float32{}
	eligible := []embeddedContent{}
	for rows.Next() {
		var id int32
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, errors.Wrap(err, "failed to scan content embedding")
		}
		embedding, err := d.blobToVector(blob)
		if err != nil {
			return nil, err
		}
		if _, ok := known[id]; ok {
			knownEmbeddings = append(knownEmbeddings, embedding)
			continue
		}
		eligible = append(eligible, embeddedContent{id: id, embedding: embedding})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ids := []int32{}
	for _, c := range eligible {
		farEnough := true
		for _, k := range knownEmbeddings {
			if l2Distance(c.embedding, k) < sample.MinDistance {
				farEnough = false
				break
			}
		}
		if farEnough {
			ids = append(ids, c.id)
		}
	}

	rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	if len(ids) > sample.Limit {
		ids = ids[:sample.Limit]
	}
	if len(ids) == 0 {
		return []*store.Content{}, nil
	}
	return d.ListContentByIDs(ctx, ids)
}

// ListRatedContent hydrates content rows with the user's ratings.
func (d *DB) ListRatedContent(ctx context.Context, find *store.FindRatedContent) ([]*store.RatedContent, error) {
	query := `
		SELECT
			c.id, c.content_type, c.title, c.url, c.description, COALESCE(c.source_id, 0), c.date, c.embedding, c.media,
			COALESCE(s.url, '') AS source_url,
			COALESCE(ucr.rating, 0) AS rating
		FROM content c
		LEFT JOIN user_content_rating ucr ON c.id = ucr.content_id AND ucr.user_id = ?
		LEFT JOIN source s ON c.source_id = s.id
	`
	args := []any{find.UserID}

	switch {
	case len(find.IDs) > 0:
		marks, idArgs := idPlaceholders(find.IDs)
		query += ` WHERE c.id IN (` + marks + `)`
		args = append(args, idArgs...)
	case len(find.NearestTo) > 0:
		query += ` WHERE c.embedding IS NOT NULL`
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
		var blob []byte
		var media sql.NullString
		var date int64
		if err := rows.Scan(
			&rated.Content.ID,
			&rated.Content.ContentType,
			&rated.Content.Title,
			&rated.Content.URL,
			&rated.Content.Description,
			&rated.Content.SourceID,
			&date,
			&blob,
			&media,
			&rated.SourceURL,
			&rated.Rating,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan rated content")
		}
		rated.Content.Date = time.Unix(date, 0)
		if media.Valid {
			rated.Content.Media = []byte(media.String)
		}
		if blob != nil {
			embedding, err := d.blobToVector(blob)
			if err != nil {
				return nil, err
			}
			rated.Content.Embedding = embedding
		}
		list = append(list, rated)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Nearest mode orders by distance in the application layer.
	if len(find.NearestTo) > 0 {
		sort.Slice(list, func(i, j int) bool {
			return l2Distance(list[i].Content.Embedding, find.NearestTo) < l2Distance(list[j].Content.Embedding, find.NearestTo)
		})
		if find.Limit > 0 && len(list) > find.Limit {
			list = list[:find.Limit]
		}
	}
	return list, nil
}

// DeleteContentBefore removes content published before the cutoff.
func (d *DB) DeleteContentBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := d.db.ExecContext(ctx, `DELETE FROM content WHERE date < ?`, cutoff.Unix())
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete old content")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to count deleted content")
	}
	return rows, nil
}
