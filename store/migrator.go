package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/chatassist/chatassist/internal/version"
)

// Schema bootstrap:
//
// New installations get the full schema from migration/{driver}/LATEST.sql in
// one transaction, then the schema version is stamped into system_setting.
// Existing installations only have their stamped version checked against the
// running binary; a newer stamped version than the binary is refused because
// downgrades are not supported.

//go:embed migration
var migrationFS embed.FS

const (
	// LatestSchemaFileName is the name of the latest schema file.
	LatestSchemaFileName = "LATEST.sql"
	// SchemaVersionSettingName is the system_setting key holding the schema version.
	SchemaVersionSettingName = "schema_version"
)

// Migrate initializes or verifies the database schema.
func (s *Store) Migrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check if database is initialized")
	}

	currentVersion := version.GetCurrentVersion(s.profile.Mode)
	if !initialized {
		if err := s.applyLatestSchema(ctx); err != nil {
			return errors.Wrap(err, "failed to apply latest schema")
		}
		if err := s.setSchemaVersion(ctx, currentVersion); err != nil {
			return errors.Wrap(err, "failed to stamp schema version")
		}
		slog.Info("database initialized", slog.String("version", currentVersion))
		return nil
	}

	schemaVersion, err := s.getSchemaVersion(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to read schema version")
	}
	if schemaVersion == "" {
		// Pre-versioning installation; stamp and move on.
		if err := s.setSchemaVersion(ctx, currentVersion); err != nil {
			return errors.Wrap(err, "failed to stamp schema version")
		}
		return nil
	}
	if version.IsVersionGreaterOrEqualThan(schemaVersion, currentVersion) && schemaVersion != currentVersion {
		return errors.Errorf("database schema version %s is newer than binary version %s", schemaVersion, currentVersion)
	}
	if schemaVersion != currentVersion {
		if err := s.setSchemaVersion(ctx, currentVersion); err != nil {
			return errors.Wrap(err, "failed to update schema version")
		}
		slog.Info("schema version updated",
			slog.String("from", schemaVersion),
			slog.String("to", currentVersion))
	}
	return nil
}

func (s *Store) applyLatestSchema(ctx context.Context) error {
	filePath := fmt.Sprintf("migration/%s/%s", s.profile.Driver, LatestSchemaFileName)
	buf, err := migrationFS.ReadFile(filePath)
	if err != nil {
		return errors.Wrapf(err, "failed to read latest schema file %q", filePath)
	}

	tx, err := s.driver.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(buf)); err != nil {
		return errors.Wrap(err, "failed to execute latest schema")
	}
	return tx.Commit()
}

func (s *Store) getSchemaVersion(ctx context.Context) (string, error) {
	var value string
	err := s.driver.GetDB().QueryRowContext(ctx,
		"SELECT value FROM system_setting WHERE name = $1", SchemaVersionSettingName,
	).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

func (s *Store) setSchemaVersion(ctx context.Context, schemaVersion string) error {
	_, err := s.driver.GetDB().ExecContext(ctx,
		`INSERT INTO system_setting (name, value) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value`,
		SchemaVersionSettingName, schemaVersion,
	)
	return err
}
