package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lib/pq"

	"github.com/voyagen/tvdetection/migrations"
)

// Tables and enum types every reader and writer relies on.
var (
	requiredTables = []string{"channels", "programs", "schedules", "recordings", "scans"}
	requiredEnums  = []string{"tuning_type", "channel_status", "recording_status"}
)

func newMigrate(dsn string) (*migrate.Migrate, error) {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("iofs.New: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return nil, fmt.Errorf("migrate.NewWithSourceInstance: %w", err)
	}
	return m, nil
}

// RunMigrations applies every embedded migration not yet applied to the DSN.
func RunMigrations(dsn string) error {
	m, err := newMigrate(dsn)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate.Up: %w", err)
	}
	return nil
}

// RollbackMigrations reverts the last steps migrations. steps <= 0 reverts all.
func RollbackMigrations(dsn string, steps int) error {
	m, err := newMigrate(dsn)
	if err != nil {
		return err
	}
	defer m.Close()
	if steps <= 0 {
		err = m.Down()
	} else {
		err = m.Steps(-steps)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// SchemaVersion returns the applied migration version and whether the last
// migration failed halfway. A fresh database reports version 0.
func SchemaVersion(dsn string) (uint, bool, error) {
	m, err := newMigrate(dsn)
	if err != nil {
		return 0, false, err
	}
	defer m.Close()
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("migrate.Version: %w", err)
	}
	return v, dirty, nil
}

// VerifySchema checks that the tables and enum types exist in the DSN's database.
func VerifySchema(ctx context.Context, dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer db.Close()
	return verifySchema(ctx, db)
}

func verifySchema(ctx context.Context, db *sql.DB) error {
	tables, err := existing(ctx, db,
		`SELECT table_name FROM information_schema.tables
		 WHERE table_schema = current_schema() AND table_name = ANY($1)`, requiredTables)
	if err != nil {
		return fmt.Errorf("list tables: %w", err)
	}
	enums, err := existing(ctx, db,
		`SELECT typname FROM pg_type
		 WHERE typtype = 'e' AND typname = ANY($1)`, requiredEnums)
	if err != nil {
		return fmt.Errorf("list enum types: %w", err)
	}

	var missing []string
	for _, t := range requiredTables {
		if !tables[t] {
			missing = append(missing, "table "+t)
		}
	}
	for _, e := range requiredEnums {
		if !enums[e] {
			missing = append(missing, "type "+e)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("schema incomplete, missing %s", strings.Join(missing, ", "))
	}
	return nil
}

func existing(ctx context.Context, db *sql.DB, query string, names []string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, query, pq.Array(names))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	found := make(map[string]bool, len(names))
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		found[n] = true
	}
	return found, rows.Err()
}
