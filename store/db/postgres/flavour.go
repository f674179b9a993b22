package postgres

import (
	"context"
	"strings"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/hrygo/gourmet/store"
)

// CreateFlavour inserts a flavour row and returns it with the assigned id.
func (d *DB) CreateFlavour(ctx context.Context, create *store.Flavour) (*store.Flavour, error) {
	stmt := `
		INSERT INTO user_flavour (user_id, nickname, embedding)
		VALUES (` + placeholders(3) + `)
		RETURNING id, created_at
	`
	err := d.db.QueryRowContext(ctx, stmt,
		create.UserID,
		create.Nickname,
		pgvector.NewVector(create.Embedding),
	).Scan(&create.ID, &create.CreatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create flavour")
	}
	return create, nil
}

// ListFlavours lists flavours matching the find condition.
func (d *DB) ListFlavours(ctx context.Context, find *store.FindFlavour) ([]*store.Flavour, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.UserID != nil {
		where, args = append(where, "user_id = "+placeholder(len(args)+1)), append(args, *find.UserID)
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
		var embedding pgvector.Vector
		if err := rows.Scan(
			&flavour.ID,
			&flavour.UserID,
			&flavour.Nickname,
			&embedding,
			&flavour.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan flavour")
		}
		flavour.Embedding = embedding.Slice()
		list = append(list, flavour)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateFlavourEmbedding replaces a flavour's reference embedding.
func (d *DB) UpdateFlavourEmbedding(ctx context.Context, id int32, embedding []float32) error {
	stmt := `UPDATE user_flavour SET embedding = ` + placeholder(1) + ` WHERE id = ` + placeholder(2)
	result, err := d.db.ExecContext(ctx, stmt, pgvector.NewVector(embedding), id)
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
	stmt := `DELETE FROM user_flavour WHERE id = ` + placeholder(1)
	result, err := d.db.ExecContext(ctx, stmt, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete flavour")
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.Errorf("flavour %d not found", id)
	}
	return nil
}
