package postgres

import (
	"database/sql"
	"fmt"
	"strings"

	// Import the Postgres driver.
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/hrygo/gourmet/internal/profile"
	"github.com/hrygo/gourmet/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a Postgres database specified by the DSN in the profile.
// Recommendation queries rely on the pgvector extension; Migrate installs it.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	postgresDB, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	if err := postgresDB.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping db")
	}

	driver := DB{db: postgresDB, profile: profile}
	return &driver, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

// placeholder returns the $N parameter marker for one-based index n.
func placeholder(n int) string {
	return "$" + fmt.Sprint(n)
}

// placeholders returns "$1, $2, ..., $n".
func placeholders(n int) string {
	list := []string{}
	for i := range n {
		list = append(list, placeholder(i+1))
	}
	return strings.Join(list, ", ")
}
