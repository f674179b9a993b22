package postgres

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// Schema for the recommendation store. The embedding columns are sized by the
// deployment-wide dimension from the profile; changing the dimension requires
// re-embedding every row, so there is deliberately no ALTER path here.
const latestSchema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS "user" (
	id TEXT PRIMARY KEY,
	embedding vector(%[1]d),
	created_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())
);

CREATE TABLE IF NOT EXISTS source (
	id SERIAL PRIMARY KEY,
	url TEXT NOT NULL UNIQUE,
	source_type TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS content (
	id SERIAL PRIMARY KEY,
	content_type TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL DEFAULT '',
	url TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	source_id INTEGER REFERENCES source(id),
	date TIMESTAMPTZ NOT NULL,
	embedding vector(%[1]d),
	media JSONB
);

CREATE TABLE IF NOT EXISTS user_content_rating (
	id SERIAL PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES "user"(id),
	content_id INTEGER NOT NULL REFERENCES content(id) ON DELETE CASCADE,
	rating NUMERIC(4, 3) NOT NULL,
	timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT uq_user_content_rating UNIQUE (user_id, content_id)
);

CREATE TABLE IF NOT EXISTS user_flavour (
	id SERIAL PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES "user"(id),
	nickname TEXT NOT NULL DEFAULT '',
	embedding vector(%[1]d),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_content_date ON content (date);
CREATE INDEX IF NOT EXISTS idx_user_content_rating_user ON user_content_rating (user_id);
CREATE INDEX IF NOT EXISTS idx_user_flavour_user ON user_flavour (user_id);
`

// Migrate applies the latest schema. Statements are idempotent so this runs
// unconditionally at startup.
func (d *DB) Migrate(ctx context.Context) error {
	stmt := fmt.Sprintf(latestSchema, d.profile.EmbeddingDim)
	if _, err := d.db.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(err, "failed to apply latest schema")
	}
	return nil
}
