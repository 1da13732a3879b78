package database

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func setupTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// testStores returns every store implementation that can run locally.
// PostgreSQL joins when HEARTH_TEST_POSTGRES is set.
func testStores(t *testing.T) map[string]Store {
	t.Helper()
	stores := map[string]Store{"sqlite": setupTestDB(t)}

	bolt, err := OpenBolt(filepath.Join(t.TempDir(), "test.bolt"))
	if err != nil {
		t.Fatalf("Failed to open bolt store: %v", err)
	}
	t.Cleanup(func() { bolt.Close() })
	stores["bolt"] = bolt

	if os.Getenv("HEARTH_TEST_POSTGRES") != "" {
		cfg := Config{Driver: DriverPostgres, Postgres: DefaultPostgresConfig()}
		if port, err := strconv.Atoi(os.Getenv("HEARTH_TEST_POSTGRES_PORT")); err == nil {
			cfg.Postgres.Port = port
		}
		cfg.Postgres.Password = os.Getenv("HEARTH_TEST_POSTGRES_PASSWORD")
		pg, err := OpenWithConfig(cfg)
		if err != nil {
			t.Logf("PostgreSQL not available: %v", err)
		} else {
			pg.db.Exec("DELETE FROM inventory")
			pg.db.Exec("DELETE FROM characters")
			t.Cleanup(func() { pg.Close() })
			stores["postgres"] = pg
		}
	}
	return stores
}

func TestCreateAndFindCharacter(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			c := &Character{
				Name:         "Aldric",
				PasswordHash: "hash",
				RoomID:       "square",
				Inventory:    []InventoryItem{{InstanceID: "i-1", ItemID: "torch"}},
			}
			if err := store.CreateCharacter(c); err != nil {
				t.Fatalf("CreateCharacter: %v", err)
			}
			if c.ID == 0 {
				t.Error("Character ID should not be 0")
			}

			got, err := store.FindCharacterByName("aldric")
			if err != nil {
				t.Fatalf("FindCharacterByName: %v", err)
			}
			if got.Name != "Aldric" {
				t.Errorf("Expected name 'Aldric', got '%s'", got.Name)
			}
			if got.RoomID != "square" {
				t.Errorf("Expected room 'square', got '%s'", got.RoomID)
			}
			if got.PasswordHash != "hash" {
				t.Errorf("Expected password hash to round trip, got %q", got.PasswordHash)
			}
			if len(got.Inventory) != 1 || got.Inventory[0].ItemID != "torch" || got.Inventory[0].InstanceID != "i-1" {
				t.Errorf("Unexpected inventory %+v", got.Inventory)
			}
			if got.LastPlayed != nil {
				t.Error("LastPlayed should be nil before first save")
			}
		})
	}
}

func TestCreateCharacterDuplicate(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.CreateCharacter(&Character{Name: "Mira", PasswordHash: "x", RoomID: "r"}); err != nil {
				t.Fatalf("CreateCharacter: %v", err)
			}
			err := store.CreateCharacter(&Character{Name: "MIRA", PasswordHash: "y", RoomID: "r"})
			if !errors.Is(err, ErrCharacterExists) {
				t.Errorf("Expected ErrCharacterExists, got %v", err)
			}
		})
	}
}

func TestFindCharacterNotFound(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.FindCharacterByName("nobody")
			if !errors.Is(err, ErrCharacterNotFound) {
				t.Errorf("Expected ErrCharacterNotFound, got %v", err)
			}
		})
	}
}

func TestSaveCharacter(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			c := &Character{Name: "Tobin", PasswordHash: "h", RoomID: "square"}
			if err := store.CreateCharacter(c); err != nil {
				t.Fatalf("CreateCharacter: %v", err)
			}

			c.RoomID = "tavern"
			c.Inventory = []InventoryItem{
				{InstanceID: "a", ItemID: "mug"},
				{InstanceID: "b", ItemID: "coin"},
			}
			if err := store.SaveCharacter(c); err != nil {
				t.Fatalf("SaveCharacter: %v", err)
			}

			got, err := store.FindCharacterByName("Tobin")
			if err != nil {
				t.Fatalf("FindCharacterByName: %v", err)
			}
			if got.RoomID != "tavern" {
				t.Errorf("Expected room 'tavern', got '%s'", got.RoomID)
			}
			if len(got.Inventory) != 2 || got.Inventory[0].ItemID != "mug" || got.Inventory[1].ItemID != "coin" {
				t.Errorf("Unexpected inventory %+v", got.Inventory)
			}
			if got.LastPlayed == nil {
				t.Error("LastPlayed should be set after save")
			}

			c.Inventory = nil
			if err := store.SaveCharacter(c); err != nil {
				t.Fatalf("SaveCharacter: %v", err)
			}
			got, _ = store.FindCharacterByName("Tobin")
			if len(got.Inventory) != 0 {
				t.Errorf("Expected empty inventory after clearing, got %+v", got.Inventory)
			}
		})
	}
}

func TestSaveCharacterNotFound(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			err := store.SaveCharacter(&Character{Name: "Ghost", RoomID: "void"})
			if !errors.Is(err, ErrCharacterNotFound) {
				t.Errorf("Expected ErrCharacterNotFound, got %v", err)
			}
		})
	}
}

func TestAllCharacters(t *testing.T) {
	db := setupTestDB(t)
	for _, n := range []string{"Ann", "Bo", "Cy"} {
		if err := db.CreateCharacter(&Character{Name: n, PasswordHash: "h", RoomID: "r"}); err != nil {
			t.Fatalf("CreateCharacter(%s): %v", n, err)
		}
	}

	all, err := db.AllCharacters()
	if err != nil {
		t.Fatalf("AllCharacters: %v", err)
	}
	if len(all) != 3 || all[0].Name != "Ann" || all[2].Name != "Cy" {
		t.Errorf("Unexpected characters %+v", all)
	}
}

func TestOpenStoreSelectsDriver(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenStore(Config{Driver: DriverBolt, BoltPath: filepath.Join(dir, "x.bolt")})
	if err != nil {
		t.Fatalf("OpenStore(bolt): %v", err)
	}
	if _, ok := s.(*BoltStore); !ok {
		t.Errorf("Expected *BoltStore, got %T", s)
	}
	s.Close()

	s, err = OpenStore(Config{Driver: DriverSQLite, SQLitePath: filepath.Join(dir, "nested", "x.db")})
	if err != nil {
		t.Fatalf("OpenStore(sqlite): %v", err)
	}
	if _, ok := s.(*Database); !ok {
		t.Errorf("Expected *Database, got %T", s)
	}
	s.Close()
}

func TestDialectRebind(t *testing.T) {
	tests := map[string]struct {
		driver string
		query  string
		exp    string
	}{
		"sqlite unchanged": {
			driver: DriverSQLite,
			query:  "SELECT * FROM characters WHERE id = ? AND name = ?",
			exp:    "SELECT * FROM characters WHERE id = ? AND name = ?",
		},
		"postgres numbered": {
			driver: DriverPostgres,
			query:  "SELECT * FROM characters WHERE id = ? AND name = ?",
			exp:    "SELECT * FROM characters WHERE id = $1 AND name = $2",
		},
		"postgres no placeholders": {
			driver: DriverPostgres,
			query:  "SELECT 1",
			exp:    "SELECT 1",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := NewDialect(tt.driver).Rebind(tt.query); got != tt.exp {
				t.Errorf("Rebind() = %q, want %q", got, tt.exp)
			}
		})
	}
}

func TestDialectDuplicateKey(t *testing.T) {
	sqlite := NewDialect(DriverSQLite)
	if !sqlite.IsDuplicateKeyError(errors.New("UNIQUE constraint failed: characters.name")) {
		t.Error("sqlite should detect UNIQUE constraint failure")
	}
	if sqlite.IsDuplicateKeyError(nil) {
		t.Error("nil is not a duplicate key error")
	}

	pg := NewDialect(DriverPostgres)
	if !pg.IsDuplicateKeyError(errors.New(`pq: duplicate key value violates unique constraint "characters_name_key"`)) {
		t.Error("postgres should detect duplicate key message")
	}
	if pg.IsDuplicateKeyError(errors.New("connection refused")) {
		t.Error("unrelated error reported as duplicate key")
	}
}
