package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/gourmet/store"
)

// CreateFlavour inserts a flavour row and returns it with the assigned id.
func (d *DB) CreateFlavour(ctx context.Context, create *store.Flavour) (*store.Flavour, error) {
	blob, err := d.vectorToBlob(create.Embedding)
	if err != nil {
		return nil, err
	}

	stmt := `
		INSERT INTO user_flavour (user_id, nickname, embedding)
		VALUES (?, ?, ?)
		RETURNING id, created_at
	`
	var createdAt int64
	if err := d.db.QueryRowContext(ctx, stmt, create.UserID, create.Nickname, blob).Scan(&create.ID, &createdAt); err != nil {
		return nil, errors.Wrap(err, "failed to create flavour")
	}
	create.CreatedAt = time.Unix(createdAt, 0)
	return create, nil
}

// ListFlavours lists flavours matching the find condition.
func (d *DB) ListFlavours(ctx context.Context, find *store.FindFlavour) ([]*store.Flavour, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if find.UserID != nil {
		where, args = append(where, "user_id = ?"), append(args, *find.UserID)
	}

	query := `
		SELECT id, user_id, nickname, embedding, created_at
		FROM user_flavour
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_at DESC
	`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list flavours")
	}
	defer rows.Close()

	list := []*store.Flavour{}
	for rows.Next() {
		flavour := &store.Flavour{}
		var blob []byte
		var createdAt int64
		if err := rows.Scan(&flavour.ID, &flavour.UserID, &flavour.Nickname, &blob, &createdAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan flavour")
		}
		if blob != nil {
			embedding, err := d.blobToVector(blob)
			if err != nil {
				return nil, err
			}
			flavour.Embedding = embedding
		}
		flavour.CreatedAt = time.Unix(createdAt, 0)
		list = append(list, flavour)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateFlavourEmbedding replaces a flavour's reference embedding.
func (d *DB) UpdateFlavourEmbedding(ctx context.Context, id int32, embedding []float32) error {
	blob, err := d.vectorToBlob(embedding)
	if err != nil {
		return err
	}
	result, err := d.db.ExecContext(ctx, `UPDATE user_flavour SET embedding = ? WHERE id = ?`, blob, id)
	if err != nil {
		return errors.Wrap(err, "failed to update flavour embedding")
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.Errorf("flavour %d not found", id)
	}
	return nil
}

// DeleteFlavour deletes a flavour row.
func (d *DB) DeleteFlavour(ctx context.Context, id int32) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM user_flavour WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete flavour")
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.Errorf("flavour %d not found", id)
	}
	return nil
}
