package migrator

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

var ErrNoMigrations = errors.New("no migrations source configured")

type Config struct {
	// MigrationsPath is the directory inside MigrationsFS holding the
	// numbered .up.sql/.down.sql files.
	MigrationsFS   fs.FS
	MigrationsPath string
}

type Migrator struct {
	db     *sql.DB
	config Config
	logger *slog.Logger
}

func NewMigrator(db *sql.DB, config Config, logger *slog.Logger) *Migrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Migrator{
		db:     db,
		config: config,
		logger: logger,
	}
}

// MigrationDirection defines the direction of migrations
type MigrationDirection string

const (
	MigrationUp   MigrationDirection = "up"
	MigrationDown MigrationDirection = "down"
)

// createMigrator create a migration instance
func (m *Migrator) createMigrator() (*migrate.Migrate, error) {
	if m.config.MigrationsFS == nil {
		return nil, ErrNoMigrations
	}

	driver, err := sqlite.WithInstance(m.db, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(m.config.MigrationsFS, m.config.MigrationsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open migrations: %w", err)
	}
	migrator, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return migrator, nil
}

// RunMigrations applies database migrations in the specified direction
func (m *Migrator) RunMigrations(direction MigrationDirection) error {
	m.logger.Debug("Running database migrations", "path", m.config.MigrationsPath, "direction", direction)

	migrator, err := m.createMigrator()
	if err != nil {
		return err
	}

	var migrationErr error
	switch direction {
	case MigrationUp:
		migrationErr = migrator.Up()
	case MigrationDown:
		migrationErr = migrator.Down()
	default:
		return fmt.Errorf("invalid migration direction: %s", direction)
	}

	if migrationErr != nil && !errors.Is(migrationErr, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", migrationErr)
	}

	version, dirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if dirty {
		m.logger.Warn("Database schema is in a dirty state", "version", version)
		return fmt.Errorf("database schema is in a dirty state at version %d", version)
	}

	m.logger.Debug("Database migrations completed successfully", "version", version, "direction", direction)
	return nil
}

// MigrateUp applying all up migrations
func (m *Migrator) MigrateUp() error {
	return m.RunMigrations(MigrationUp)
}

// MigrateDown rolls back all migrations
func (m *Migrator) MigrateDown() error {
	return m.RunMigrations(MigrationDown)
}

// GetMigrationVersion returns the current migration version
func (m *Migrator) GetMigrationVersion() (uint, bool, error) {
	migrator, err := m.createMigrator()
	if err != nil {
		return 0, false, err
	}

	version, dirty, err := migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil // No migrations have been applied yet
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}

	return version, dirty, nil
}
