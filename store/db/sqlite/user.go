package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/hrygo/gourmet/store"
)

// CreateUser creates a user row with the caller-supplied id.
func (d *DB) CreateUser(ctx context.Context, create *store.User) (*store.User, error) {
	stmt := `
		INSERT INTO user (id)
		VALUES (?)
		RETURNING created_ts
	`
	if err := d.db.QueryRowContext(ctx, stmt, create.ID).Scan(&create.CreatedTs); err != nil {
		return nil, errors.Wrap(err, "failed to create user")
	}
	return create, nil
}

// GetUser returns the user with the given id, or nil when absent.
func (d *DB) GetUser(ctx context.Context, id string) (*store.User, error) {
	query := `SELECT id, embedding, created_ts FROM user WHERE id = ?`

	user := &store.User{}
	var blob []byte
	err := d.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &blob, &user.CreatedTs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user")
	}

	if blob != nil {
		embedding, err := d.blobToVector(blob)
		if err != nil {
			return nil, err
		}
		user.Embedding = embedding
	}
	return user, nil
}

// UpdateUserEmbedding replaces the user's reference embedding.
func (d *DB) UpdateUserEmbedding(ctx context.Context, id string, embedding []float32) error {
	blob, err := d.vectorToBlob(embedding)
	if err != nil {
		return err
	}
	result, err := d.db.ExecContext(ctx, `UPDATE user SET embedding = ? WHERE id = ?`, blob, id)
	if err != nil {
		return errors.Wrap(err, "failed to update user embedding")
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.Errorf("user %s not found", id)
	}
	return nil
}
