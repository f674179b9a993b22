package postgres

import (
	"context"
	"database/sql"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/hrygo/gourmet/store"
)

// nullVector scans a nullable vector column. Users have no embedding until
// onboarding completes.
type nullVector struct {
	vector pgvector.Vector
	valid  bool
}

func (v *nullVector) Scan(src any) error {
	if src == nil {
		v.valid = false
		return nil
	}
	v.valid = true
	return v.vector.Scan(src)
}

func (v *nullVector) Slice() []float32 {
	if !v.valid {
		return nil
	}
	return v.vector.Slice()
}

// CreateUser creates a user row with the caller-supplied id.
func (d *DB) CreateUser(ctx context.Context, create *store.User) (*store.User, error) {
	stmt := `
		INSERT INTO "user" (id)
		VALUES (` + placeholder(1) + `)
		RETURNING created_ts
	`
	if err := d.db.QueryRowContext(ctx, stmt, create.ID).Scan(&create.CreatedTs); err != nil {
		return nil, errors.Wrap(err, "failed to create user")
	}
	return create, nil
}

// GetUser returns the user with the given id, or nil when absent.
func (d *DB) GetUser(ctx context.Context, id string) (*store.User, error) {
	query := `
		SELECT id, embedding, created_ts
		FROM "user"
		WHERE id = ` + placeholder(1)

	user := &store.User{}
	var embedding nullVector
	err := d.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &embedding, &user.CreatedTs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user")
	}

	user.Embedding = embedding.Slice()
	return user, nil
}

// UpdateUserEmbedding replaces the user's reference embedding.
func (d *DB) UpdateUserEmbedding(ctx context.Context, id string, embedding []float32) error {
	stmt := `UPDATE "user" SET embedding = ` + placeholder(1) + ` WHERE id = ` + placeholder(2)
	result, err := d.db.ExecContext(ctx, stmt, pgvector.NewVector(embedding), id)
	if err != nil {
		return errors.Wrap(err, "failed to update user embedding")
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.Errorf("user %s not found", id)
	}
	return nil
}
