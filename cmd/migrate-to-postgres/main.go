// migrate-to-postgres copies characters and their inventories from SQLite to
// PostgreSQL.
//
// Usage:
//
//	go run ./cmd/migrate-to-postgres \
//	    -sqlite data/hearth.db \
//	    -pg-host localhost \
//	    -pg-port 5432 \
//	    -pg-user hearth \
//	    -pg-password hearth \
//	    -pg-database hearth
//
// Characters already present in PostgreSQL are skipped. Creation and
// last-played times are not carried over.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/lawnchairsociety/hearthmud/internal/database"
)

// source lists every stored character.
type source interface {
	AllCharacters() ([]*database.Character, error)
}

func main() {
	pgDefaults := database.DefaultPostgresConfig()

	sqlitePath := flag.String("sqlite", database.DefaultConfig().SQLitePath, "Path to SQLite database")
	pgHost := flag.String("pg-host", pgDefaults.Host, "PostgreSQL host")
	pgPort := flag.Int("pg-port", pgDefaults.Port, "PostgreSQL port")
	pgUser := flag.String("pg-user", pgDefaults.User, "PostgreSQL user")
	pgPassword := flag.String("pg-password", "", "PostgreSQL password")
	pgDatabase := flag.String("pg-database", pgDefaults.Database, "PostgreSQL database name")
	pgSSLMode := flag.String("pg-sslmode", pgDefaults.SSLMode, "PostgreSQL SSL mode")
	dryRun := flag.Bool("dry-run", false, "Show what would be migrated without making changes")
	flag.Parse()

	log.Println("SQLite to PostgreSQL Migration Tool")
	log.Println("====================================")

	log.Printf("Opening SQLite database: %s", *sqlitePath)
	src, err := database.Open(*sqlitePath)
	if err != nil {
		log.Fatalf("Failed to open SQLite database: %v", err)
	}
	defer src.Close()

	pg := pgDefaults
	pg.Host, pg.Port, pg.User, pg.Password = *pgHost, *pgPort, *pgUser, *pgPassword
	pg.Database, pg.SSLMode = *pgDatabase, *pgSSLMode

	log.Printf("Opening PostgreSQL database: %s@%s:%d/%s", pg.User, pg.Host, pg.Port, pg.Database)
	dst, err := database.OpenWithConfig(database.Config{Driver: database.DriverPostgres, Postgres: pg})
	if err != nil {
		log.Fatalf("Failed to open PostgreSQL database: %v", err)
	}
	defer dst.Close()

	if *dryRun {
		log.Println("DRY RUN MODE - No changes will be made")
	}

	res, err := migrate(src, dst, *dryRun)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("====================================")
	log.Printf("Migration complete! Characters copied: %d, skipped: %d, items: %d", res.Copied, res.Skipped, res.Items)
	if *dryRun {
		log.Println("(DRY RUN - No actual changes were made)")
	}
}

type result struct {
	Copied  int
	Skipped int
	Items   int
}

// migrate creates every character of src in dst. Names dst already holds
// are skipped; any other error stops the run.
func migrate(src source, dst database.Store, dryRun bool) (result, error) {
	var res result
	chars, err := src.AllCharacters()
	if err != nil {
		return res, err
	}

	for _, c := range chars {
		if dryRun {
			log.Printf("  would copy %s (%d items)", c.Name, len(c.Inventory))
			res.Copied++
			res.Items += len(c.Inventory)
			continue
		}

		rec := &database.Character{
			Name:         c.Name,
			PasswordHash: c.PasswordHash,
			RoomID:       c.RoomID,
			Inventory:    c.Inventory,
		}
		switch err := dst.CreateCharacter(rec); {
		case errors.Is(err, database.ErrCharacterExists):
			log.Printf("  skipped %s: already exists", c.Name)
			res.Skipped++
		case err != nil:
			return res, fmt.Errorf("copy %s: %w", c.Name, err)
		default:
			res.Copied++
			res.Items += len(c.Inventory)
		}
	}
	return res, nil
}
