// Package datastore owns the connection to the dataset store addressed
// by DATABASE_URL. It exposes only the aggregate-query and
// raw-SQL-execution surface the Context Provider and SQL Executor need;
// it never owns or migrates the dataset's own schema.
package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Store wraps a connection to the dataset database.
type Store struct {
	db *sql.DB
}

// sqlitePrefixes are SQLAlchemy-style URL schemes accepted for
// compatibility; the modernc.org/sqlite driver wants a bare path or
// ":memory:", not a URL, so the scheme is stripped before opening.
var sqlitePrefixes = []string{"sqlite:///", "sqlite://", "sqlite:"}

// Open opens the dataset store addressed by dsn. A bare ":memory:", a
// plain file path, or a "sqlite:///path/to.db"-style URL all resolve
// through the pure-Go modernc.org/sqlite driver.
func Open(dsn string) (*Store, error) {
	for _, prefix := range sqlitePrefixes {
		if strings.HasPrefix(dsn, prefix) {
			dsn = strings.TrimPrefix(dsn, prefix)
			break
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening dataset store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging dataset store: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if !strings.Contains(dsn, ":memory:") {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting journal mode: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// scalar runs a single-row, single-column aggregate query and scans its
// result into dest.
func (s *Store) scalar(ctx context.Context, dest any, query string, args ...any) error {
	return s.db.QueryRowContext(ctx, query, args...).Scan(dest)
}

func quoteIdent(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
