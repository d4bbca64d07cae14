// Embedded-file based schema migrations.
//
// Migration SQL files live under migrations/<driver>/ and follow the
// pattern NNNN_name.up.sql / NNNN_name.down.sql. Version is a four-digit
// integer; direction "up" applies and "down" rolls back. Files are read
// from the embedded filesystem, so changing migrations requires a
// rebuild.

package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

//go:embed migrations/**/*.sql
var migrationsFS embed.FS

var reMigrationFilename = regexp.MustCompile(`^(?P<Version>\d{4})\_(?P<Name>[^.]+)\.(?P<Direction>(up|down))\.sql$`)

var ErrMigrateCurrentVersionSameAsTarget = errors.New("current version is the same as target version")

// SchemaMigration represents a single database migration
type SchemaMigration struct {
	Version int
	Name    string
	Up      bool
	SQL     string
}

// MigrationRunner loads and orders migrations for a driver
type MigrationRunner struct {
	driver     string
	migrations []SchemaMigration
	logger     *slog.Logger
}

func NewMigrationRunner(driver string) *MigrationRunner {
	return &MigrationRunner{
		driver:     driver,
		migrations: []SchemaMigration{},
		logger:     slog.With("component", "migrations", "driver", driver),
	}
}

func (mr *MigrationRunner) dirPath() (string, error) {
	switch mr.driver {
	case "sqlite3":
		return "migrations/sqlite3", nil
	default:
		return "", fmt.Errorf("unsupported driver: %s", mr.driver)
	}
}

// LatestVersion scans migration files and returns the highest version number
func (mr *MigrationRunner) LatestVersion() (int, error) {
	dirPath, err := mr.dirPath()
	if err != nil {
		return -1, err
	}

	entries, err := migrationsFS.ReadDir(dirPath)
	if err != nil {
		return -1, fmt.Errorf("failed to read migration directory: %w", err)
	}

	latest := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		migration, err := mr.parseMigrationFile(filepath.Join(dirPath, entry.Name()))
		if err != nil || !migration.Up {
			continue
		}
		if migration.Version > latest {
			latest = migration.Version
		}
	}
	return latest, nil
}

// LoadMigrations loads the migrations needed to go from version prior to
// version target. A target of -1 means the latest version; 0 means the
// database zero state.
func (mr *MigrationRunner) LoadMigrations(prior int, target int) ([]SchemaMigration, error) {
	if target == -1 {
		latest, err := mr.LatestVersion()
		if err != nil {
			return nil, fmt.Errorf("failed to get latest migration version: %w", err)
		}
		target = latest
	}

	if prior == target {
		return nil, ErrMigrateCurrentVersionSameAsTarget
	}

	dirPath, err := mr.dirPath()
	if err != nil {
		return nil, err
	}

	entries, err := migrationsFS.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		migration, err := mr.parseMigrationFile(filepath.Join(dirPath, entry.Name()))
		if err != nil {
			mr.logger.Warn("Failed to parse migration file", "file", entry.Name(), "error", err)
			continue
		}
		if mr.skipMigration(migration, prior, target) {
			continue
		}
		mr.migrations = append(mr.migrations, migration)
	}

	if prior < target {
		sort.Slice(mr.migrations, func(i, j int) bool {
			return mr.migrations[i].Version < mr.migrations[j].Version
		})
	} else {
		sort.Slice(mr.migrations, func(i, j int) bool {
			return mr.migrations[i].Version > mr.migrations[j].Version
		})
	}

	mr.logger.Info("Loaded migrations", "count", len(mr.migrations), "from_version", prior, "to_version", target)
	return mr.migrations, nil
}

func (mr *MigrationRunner) skipMigration(migration SchemaMigration, currentVersion int, targetVersion int) bool {
	if targetVersion > currentVersion {
		if !migration.Up {
			return true
		}
		return migration.Version > targetVersion || migration.Version <= currentVersion
	}

	if migration.Up {
		return true
	}
	return migration.Version <= targetVersion || migration.Version > currentVersion
}

func (mr *MigrationRunner) parseMigrationFile(path string) (SchemaMigration, error) {
	filename := filepath.Base(path)
	parts := reMigrationFilename.FindStringSubmatch(filename)
	if len(parts) != 5 {
		return SchemaMigration{}, fmt.Errorf("invalid migration filename: %s", filename)
	}

	sqlBytes, err := migrationsFS.ReadFile(path)
	if err != nil {
		return SchemaMigration{}, fmt.Errorf("failed to read migration file: %w", err)
	}

	version, _ := strconv.Atoi(parts[reMigrationFilename.SubexpIndex("Version")])
	return SchemaMigration{
		Version: version,
		Name:    parts[reMigrationFilename.SubexpIndex("Name")],
		Up:      parts[reMigrationFilename.SubexpIndex("Direction")] == "up",
		SQL:     string(sqlBytes),
	}, nil
}

// runMigrations brings the schema up to the latest embedded version.
func (p *SQLProvider) runMigrations(driver string) error {
	ctx := context.Background()

	if _, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	current, err := p.GetSchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	runner := NewMigrationRunner(driver)
	migrations, err := runner.LoadMigrations(current, -1)
	if errors.Is(err, ErrMigrateCurrentVersionSameAsTarget) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		tx, err := p.db.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, migration.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %04d_%s failed: %w", migration.Version, migration.Name, err)
		}
		if migration.Up {
			_, err = tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, migration.Version)
		} else {
			_, err = tx.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version = ?`, migration.Version)
		}
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %04d: %w", migration.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		p.logger.Info("Applied migration", "version", migration.Version, "name", migration.Name, "up", migration.Up)
	}

	return nil
}
