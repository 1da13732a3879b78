package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Dialect hides the SQL differences between SQLite and PostgreSQL.
type Dialect interface {
	// DriverName is the database/sql driver name.
	DriverName() string

	// Rebind rewrites ? placeholders into the dialect's form.
	Rebind(query string) string

	// InitStatements run once per connection pool before migrations.
	InitStatements() []string

	// Schema returns the CREATE statements for the character tables.
	Schema() []string

	// IsDuplicateKeyError reports a unique constraint violation.
	IsDuplicateKeyError(err error) bool
}

// NewDialect returns the dialect for a driver name, defaulting to SQLite.
func NewDialect(driver string) Dialect {
	if driver == DriverPostgres {
		return postgresDialect{}
	}
	return sqliteDialect{}
}

type sqliteDialect struct{}

func (sqliteDialect) DriverName() string { return "sqlite" }

func (sqliteDialect) Rebind(query string) string { return query }

func (sqliteDialect) InitStatements() []string {
	return []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
}

func (sqliteDialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS characters (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL COLLATE NOCASE,
			password_hash TEXT NOT NULL,
			room_id TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			last_played TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS inventory (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			character_id INTEGER NOT NULL REFERENCES characters(id) ON DELETE CASCADE,
			instance_id TEXT NOT NULL,
			item_id TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_inventory_character_id ON inventory(character_id)`,
	}
}

func (sqliteDialect) IsDuplicateKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

type postgresDialect struct{}

func (postgresDialect) DriverName() string { return "postgres" }

// Rebind numbers placeholders: "a = ? AND b = ?" becomes "a = $1 AND b = $2".
func (postgresDialect) Rebind(query string) string {
	var b strings.Builder
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] != '?' {
			b.WriteByte(query[i])
			continue
		}
		n++
		fmt.Fprintf(&b, "$%d", n)
	}
	return b.String()
}

func (postgresDialect) InitStatements() []string {
	return []string{"CREATE EXTENSION IF NOT EXISTS citext"}
}

func (postgresDialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS characters (
			id SERIAL PRIMARY KEY,
			name CITEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			room_id TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			last_played TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS inventory (
			id SERIAL PRIMARY KEY,
			character_id INTEGER NOT NULL REFERENCES characters(id) ON DELETE CASCADE,
			instance_id TEXT NOT NULL,
			item_id TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_inventory_character_id ON inventory(character_id)`,
	}
}

// IsDuplicateKeyError matches SQLSTATE 23505 (unique_violation).
func (postgresDialect) IsDuplicateKeyError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return err != nil && strings.Contains(err.Error(), "duplicate key")
}
