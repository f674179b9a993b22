// Package db provides the database driver factory.
package db

import (
	"github.com/pkg/errors"

	"github.com/hrygo/gourmet/internal/profile"
	"github.com/hrygo/gourmet/store"
	"github.com/hrygo/gourmet/store/db/postgres"
	"github.com/hrygo/gourmet/store/db/sqlite"
)

// NewDBDriver creates a new DB driver based on the profile.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "postgres":
		driver, err = postgres.NewDB(profile)
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver: %s", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
