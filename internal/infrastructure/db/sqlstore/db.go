// Package sqlstore implements the repositories on a relational database
// through sqlx. SQLite (modernc.org/sqlite) and Postgres (lib/pq) are
// supported; queries are written with ? placeholders and rebound per driver.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/ollivarila/wsk2/internal/core/domain"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	defaultTimeout = 10 * time.Second
)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Config selects the driver and data source.
type Config struct {
	Driver string
	DSN    string
}

// Open connects to the database and verifies it with a ping. SQLite
// connections always enable foreign keys.
func Open(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	dsn := cfg.DSN
	switch cfg.Driver {
	case DriverSQLite:
		if !strings.Contains(dsn, "foreign_keys") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + "_pragma=foreign_keys(1)"
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", cfg.Driver)
	}

	db, err := sqlx.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	if cfg.Driver == DriverSQLite {
		// One writer at a time; also keeps an in-memory database alive.
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sql ping: %w", err)
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  user_name TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL UNIQUE,
  password TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'user',
  created_at TIMESTAMP NOT NULL,
  updated_at TIMESTAMP NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS cats (
  id TEXT PRIMARY KEY,
  cat_name TEXT NOT NULL,
  weight DOUBLE PRECISION NOT NULL,
  filename TEXT NOT NULL,
  birthdate TIMESTAMP NOT NULL,
  lat DOUBLE PRECISION NOT NULL,
  lng DOUBLE PRECISION NOT NULL,
  owner_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE
)`,
	`CREATE INDEX IF NOT EXISTS idx_cats_owner ON cats(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_cats_coords ON cats(lat, lng)`,
}

// EnsureSchema creates the tables if they do not exist (idempotent).
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, ddl := range schema {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

type violation int

const (
	noViolation violation = iota
	uniqueViolation
	foreignKeyViolation
)

func classify(err error) violation {
	var lite *sqlite.Error
	if errors.As(err, &lite) {
		switch lite.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return uniqueViolation
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return foreignKeyViolation
		}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return uniqueViolation
		case "23503":
			return foreignKeyViolation
		}
	}
	return noViolation
}

// translate maps driver errors onto the domain taxonomy.
func translate(op string, err error) error {
	switch classify(err) {
	case uniqueViolation:
		return fmt.Errorf("%s: %w", op, domain.ErrConflict)
	case foreignKeyViolation:
		return domain.NewValidationError(domain.FieldError{Field: "owner", Message: "does not reference an existing user"})
	}
	return domain.StoreError(op, err)
}

// setClause renders "a = ?, b = ?" for the given columns.
func setClause(cols []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = c + " = ?"
	}
	return strings.Join(parts, ", ")
}
