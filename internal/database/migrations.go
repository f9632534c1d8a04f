package database

import (
	"errors"
	"fmt"
	"strings"

	"automation-worker/db/migrations"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

// RunMigrations voert de database migraties uit wanneer enabled true is.
func RunMigrations(databaseURL string, enabled bool, log *zap.Logger) error {
	log = log.With(zap.String("component", "migrations"))
	if !enabled {
		log.Info("skipping migrations (RUN_MIGRATIONS is not 'true')")
		return nil
	}

	log.Info("running database migrations")

	source, err := iofs.New(migrations.SQLFiles, ".")
	if err != nil {
		return fmt.Errorf("could not create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, migrateURL(databaseURL))
	if err != nil {
		return fmt.Errorf("could not create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("database schema is up to date")
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, _ := m.Version()
	log.Info("all database migrations applied successfully",
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}

// migrateURL rewrites a libpq style URL to the scheme of the pgx/v5 migrate driver.
func migrateURL(databaseURL string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(databaseURL, prefix) {
			return "pgx5://" + strings.TrimPrefix(databaseURL, prefix)
		}
	}
	return databaseURL
}
