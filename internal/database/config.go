package database

import (
	"fmt"
	"time"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
)

// Config selects and configures the character store.
type Config struct {
	// Driver is one of "sqlite", "postgres" or "bolt".
	Driver string `yaml:"driver" validate:"oneof=sqlite postgres bolt"`

	SQLitePath string `yaml:"sqlite_path" validate:"required_if=Driver sqlite"`
	BoltPath   string `yaml:"bolt_path" validate:"required_if=Driver bolt"`

	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port" validate:"gte=0,lte=65535"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`

	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// DefaultConfig returns a SQLite configuration under data/.
func DefaultConfig() Config {
	return Config{
		Driver:     DriverSQLite,
		SQLitePath: "data/hearth.db",
		BoltPath:   "data/hearth.bolt",
		Postgres:   DefaultPostgresConfig(),
	}
}

// DefaultPostgresConfig returns local connection defaults with a small pool.
func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		Host:            "localhost",
		Port:            5432,
		User:            "hearth",
		Database:        "hearth",
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// DSN renders the lib/pq connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}
