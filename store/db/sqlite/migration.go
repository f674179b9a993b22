package sqlite

import (
	"context"

	"github.com/pkg/errors"
)

const latestSchema = `
CREATE TABLE IF NOT EXISTS user (
	id TEXT PRIMARY KEY,
	embedding BLOB,
	created_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now'))
);

CREATE TABLE IF NOT EXISTS source (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	url TEXT NOT NULL UNIQUE,
	source_type TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS content (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	content_type TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL DEFAULT '',
	url TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	source_id INTEGER REFERENCES source(id),
	date BIGINT NOT NULL,
	embedding BLOB,
	media TEXT
);

CREATE TABLE IF NOT EXISTS user_content_rating (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL REFERENCES user(id),
	content_id INTEGER NOT NULL REFERENCES content(id) ON DELETE CASCADE,
	rating REAL NOT NULL,
	timestamp BIGINT NOT NULL DEFAULT (strftime('%s', 'now')),
	UNIQUE (user_id, content_id)
);

CREATE TABLE IF NOT EXISTS user_flavour (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL REFERENCES user(id),
	nickname TEXT NOT NULL DEFAULT '',
	embedding BLOB,
	created_at BIGINT NOT NULL DEFAULT (strftime('%s', 'now'))
);

CREATE INDEX IF NOT EXISTS idx_content_date ON content (date);
CREATE INDEX IF NOT EXISTS idx_user_content_rating_user ON user_content_rating (user_id);
CREATE INDEX IF NOT EXISTS idx_user_flavour_user ON user_flavour (user_id);
`

// Migrate applies the latest schema. Statements are idempotent so this runs
// unconditionally at startup.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, latestSchema); err != nil {
		return errors.Wrap(err, "failed to apply latest schema")
	}
	return nil
}
