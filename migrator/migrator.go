// Package migrator runs golang-migrate migrations against a database opened
// through the libsqldb driver. The point is that standard migration
// machinery drives the shim unmodified: migrate sees an ordinary *sql.DB
// and knows nothing about connection modes or the wrapped client libraries.
package migrator

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	msqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// New builds a migrate instance over db reading migrations from sourceURL
// (e.g. "file://migrations"). Closing the returned instance also closes db;
// Up and Down therefore leave it open.
func New(db *sql.DB, sourceURL string) (*migrate.Migrate, error) {
	driver, err := msqlite.WithInstance(db, &msqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("migrator: wrap database: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance(sourceURL, "main", driver)
	if err != nil {
		return nil, fmt.Errorf("migrator: open source %q: %w", sourceURL, err)
	}
	return m, nil
}

// Up applies all pending migrations. Already being up to date is not an
// error.
func Up(db *sql.DB, sourceURL string) error {
	m, err := New(db, sourceURL)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrator: up: %w", err)
	}
	return nil
}

// Down rolls back all applied migrations.
func Down(db *sql.DB, sourceURL string) error {
	m, err := New(db, sourceURL)
	if err != nil {
		return err
	}
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrator: down: %w", err)
	}
	return nil
}
