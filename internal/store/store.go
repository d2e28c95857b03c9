// Package store caches rendered decompilation output keyed by class
// content digest and method signature, the way teacher's database package
// wires up multiple sql.DB drivers behind one connection helper — except
// here the query surface is a single small cache table instead of a
// security-scanning toolkit.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	jerrors "jclift/internal/errors"
)

// Store is a decompilation-output cache backed by any of the drivers
// blank-imported above, selected by DSN scheme.
type Store struct {
	db     *sql.DB
	driver string
}

// driverFor maps a DSN's leading scheme to a registered database/sql
// driver name. "sqlite" selects the pure-Go modernc.org/sqlite driver
// (no cgo needed to build the cache layer); "sqlite3" selects the cgo
// mattn/go-sqlite3 driver for callers that already require cgo elsewhere.
func driverFor(dsn string) (driverName, rest string, err error) {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return "", "", jerrors.Wrap(fmt.Errorf("malformed DSN: %q", dsn), "store: parse DSN")
	}
	switch scheme {
	case "sqlite":
		return "sqlite", rest, nil
	case "sqlite3":
		return "sqlite3", rest, nil
	case "mysql":
		return "mysql", rest, nil
	case "postgres", "postgresql":
		return "postgres", dsn, nil // lib/pq wants the full postgres:// URL, not just the tail
	case "sqlserver", "mssql":
		return "sqlserver", dsn, nil
	default:
		return "", "", jerrors.Wrap(fmt.Errorf("unknown DSN scheme %q", scheme), "store: parse DSN")
	}
}

// Open connects to the cache database named by dsn (e.g.
// "sqlite://file:cache.db?cache=shared", "postgres://...").
func Open(dsn string) (*Store, error) {
	driverName, connStr, err := driverFor(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return nil, jerrors.Wrap(err, "store: open "+driverName)
	}
	return &Store{db: db, driver: driverName}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }

// EnsureSchema creates the cache table if it does not already exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS decompilations (
	id                 TEXT PRIMARY KEY,
	class_digest       TEXT NOT NULL,
	method_name        TEXT NOT NULL,
	method_descriptor  TEXT NOT NULL,
	source             TEXT NOT NULL,
	created_at         TEXT NOT NULL,
	UNIQUE(class_digest, method_name, method_descriptor)
)`)
	if err != nil {
		return jerrors.Wrap(err, "store: ensure schema")
	}
	return nil
}

// Digest returns the content-addressed key for raw class-file bytes,
// using blake2b-256 — fast, unkeyed, and collision-resistant enough for a
// local cache (spec's cache key is explicitly content-addressed, not a
// security boundary).
func Digest(classBytes []byte) string {
	sum := blake2b.Sum256(classBytes)
	return fmt.Sprintf("%x", sum)
}

// upsertQuery returns the dialect-appropriate upsert statement: MySQL has
// no ON CONFLICT clause, Postgres/SQL Server want numbered placeholders,
// and SQLite (the common case for a local cache) is happiest with plain
// "?" placeholders and SQLite's own ON CONFLICT syntax.
func (s *Store) upsertQuery() string {
	switch s.driver {
	case "mysql":
		return `
INSERT INTO decompilations (id, class_digest, method_name, method_descriptor, source, created_at)
VALUES (?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE source = VALUES(source), created_at = VALUES(created_at)`
	case "postgres", "sqlserver":
		return `
INSERT INTO decompilations (id, class_digest, method_name, method_descriptor, source, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (class_digest, method_name, method_descriptor)
DO UPDATE SET source = excluded.source, created_at = excluded.created_at`
	default: // sqlite
		return `
INSERT INTO decompilations (id, class_digest, method_name, method_descriptor, source, created_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (class_digest, method_name, method_descriptor)
DO UPDATE SET source = excluded.source, created_at = excluded.created_at`
	}
}

func (s *Store) selectQuery() string {
	switch s.driver {
	case "postgres", "sqlserver":
		return `SELECT source FROM decompilations WHERE class_digest = $1 AND method_name = $2 AND method_descriptor = $3`
	default: // sqlite, mysql
		return `SELECT source FROM decompilations WHERE class_digest = ? AND method_name = ? AND method_descriptor = ?`
	}
}

// Put inserts or replaces a cached rendering for (classDigest, methodName,
// methodDescriptor), returning the row's generated id.
func (s *Store) Put(ctx context.Context, classDigest, methodName, methodDescriptor, source string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, s.upsertQuery(),
		id, classDigest, methodName, methodDescriptor, source, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", jerrors.Wrap(err, "store: put")
	}
	return id, nil
}

// Get looks up a cached rendering; ok is false on a cache miss.
func (s *Store) Get(ctx context.Context, classDigest, methodName, methodDescriptor string) (source string, ok bool, err error) {
	row := s.db.QueryRowContext(ctx, s.selectQuery(), classDigest, methodName, methodDescriptor)
	if err := row.Scan(&source); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, jerrors.Wrap(err, "store: get")
	}
	return source, true, nil
}
