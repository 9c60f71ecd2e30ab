package db

import (
	"github.com/pkg/errors"

	"github.com/chatassist/chatassist/internal/profile"
	"github.com/chatassist/chatassist/store"
	"github.com/chatassist/chatassist/store/db/postgres"
)

// NewDBDriver creates a db driver based on the profile. Only postgres is
// supported: the conversation store depends on the pgvector extension.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	switch profile.Driver {
	case "postgres":
		driver, err := postgres.NewDB(profile)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create db driver")
		}
		return driver, nil
	default:
		return nil, errors.Errorf("unknown db driver %q", profile.Driver)
	}
}
