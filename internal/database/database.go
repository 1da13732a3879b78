// Package database persists characters and their inventories.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Store is the keyed-by-name character store the game talks to.
type Store interface {
	FindCharacterByName(name string) (*Character, error)
	CreateCharacter(c *Character) error
	SaveCharacter(c *Character) error
	Close() error
}

// Database is a Store on database/sql.
type Database struct {
	db      *sql.DB
	dialect Dialect
}

// OpenStore opens the store selected by cfg.Driver and creates its schema.
func OpenStore(cfg Config) (Store, error) {
	if cfg.Driver == DriverBolt {
		return OpenBolt(cfg.BoltPath)
	}
	return OpenWithConfig(cfg)
}

// Open opens or creates the SQLite database at path.
func Open(path string) (*Database, error) {
	return OpenWithConfig(Config{Driver: DriverSQLite, SQLitePath: path})
}

// OpenWithConfig opens a SQLite or PostgreSQL database and runs migrations.
func OpenWithConfig(cfg Config) (*Database, error) {
	dialect := NewDialect(cfg.Driver)

	var dsn string
	switch cfg.Driver {
	case DriverPostgres:
		dsn = cfg.Postgres.DSN()
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = cfg.SQLitePath
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Driver == DriverPostgres {
		pg := cfg.Postgres
		if pg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(pg.MaxOpenConns)
		}
		if pg.MaxIdleConns > 0 {
			db.SetMaxIdleConns(pg.MaxIdleConns)
		}
		if pg.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(pg.ConnMaxLifetime)
		}
	} else {
		// PRAGMAs are per connection.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	d := &Database{db: db, dialect: dialect}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return d, nil
}

// Close closes the connection pool.
func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) migrate() error {
	for _, stmt := range d.dialect.InitStatements() {
		if _, err := d.db.Exec(stmt); err != nil {
			return fmt.Errorf("init statement failed: %w\nSQL: %s", err, stmt)
		}
	}
	for _, stmt := range d.dialect.Schema() {
		if _, err := d.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, stmt)
		}
	}
	return nil
}

func (d *Database) q(query string) string {
	return d.dialect.Rebind(query)
}
