package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrCharacterNotFound is returned when a character lookup fails.
var ErrCharacterNotFound = errors.New("character not found")

// ErrCharacterExists is returned when trying to create a duplicate character.
var ErrCharacterExists = errors.New("character name already taken")

// Character is a character's persistent record.
type Character struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	PasswordHash string          `json:"password_hash"`
	RoomID       string          `json:"room_id"`
	Inventory    []InventoryItem `json:"inventory"`
	CreatedAt    time.Time       `json:"created_at"`
	LastPlayed   *time.Time      `json:"last_played,omitempty"`
}

// InventoryItem is one carried item instance.
type InventoryItem struct {
	InstanceID string `json:"instance_id"`
	ItemID     string `json:"item_id"`
}

// FindCharacterByName loads a character and its inventory (case-insensitive).
func (d *Database) FindCharacterByName(name string) (*Character, error) {
	var (
		c          Character
		lastPlayed sql.NullTime
	)
	err := d.db.QueryRow(
		d.q(`SELECT id, name, password_hash, room_id, created_at, last_played
		     FROM characters WHERE name = ?`),
		name,
	).Scan(&c.ID, &c.Name, &c.PasswordHash, &c.RoomID, &c.CreatedAt, &lastPlayed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("failed to get character: %w", err)
	}
	if lastPlayed.Valid {
		c.LastPlayed = &lastPlayed.Time
	}

	inv, err := d.loadInventory(c.ID)
	if err != nil {
		return nil, err
	}
	c.Inventory = inv
	return &c, nil
}

// CreateCharacter inserts a new character with its starting inventory and
// sets c.ID. A taken name yields ErrCharacterExists.
func (d *Database) CreateCharacter(c *Character) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	err = tx.QueryRow(
		d.q(`INSERT INTO characters (name, password_hash, room_id, created_at)
		     VALUES (?, ?, ?, ?) RETURNING id`),
		c.Name, c.PasswordHash, c.RoomID, now,
	).Scan(&c.ID)
	if err != nil {
		if d.dialect.IsDuplicateKeyError(err) {
			return ErrCharacterExists
		}
		return fmt.Errorf("failed to create character: %w", err)
	}

	if err := d.replaceInventory(tx, c.ID, c.Inventory); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	c.CreatedAt = now
	return nil
}

// SaveCharacter updates the room, last-played time and inventory of an
// existing character, matched by name.
func (d *Database) SaveCharacter(c *Character) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	var id int64
	err = tx.QueryRow(
		d.q(`UPDATE characters SET room_id = ?, password_hash = ?, last_played = ?
		     WHERE name = ? RETURNING id`),
		c.RoomID, c.PasswordHash, now, c.Name,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCharacterNotFound
		}
		return fmt.Errorf("failed to save character: %w", err)
	}

	if err := d.replaceInventory(tx, id, c.Inventory); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	c.ID = id
	c.LastPlayed = &now
	return nil
}

// AllCharacters returns every character ordered by id.
func (d *Database) AllCharacters() ([]*Character, error) {
	rows, err := d.db.Query(`SELECT name FROM characters ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan character name: %w", err)
		}
		names = append(names, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating characters: %w", err)
	}

	out := make([]*Character, 0, len(names))
	for _, name := range names {
		c, err := d.FindCharacterByName(name)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (d *Database) replaceInventory(tx *sql.Tx, characterID int64, items []InventoryItem) error {
	if _, err := tx.Exec(d.q("DELETE FROM inventory WHERE character_id = ?"), characterID); err != nil {
		return fmt.Errorf("failed to clear inventory: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	stmt, err := tx.Prepare(d.q("INSERT INTO inventory (character_id, instance_id, item_id) VALUES (?, ?, ?)"))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, it := range items {
		if _, err := stmt.Exec(characterID, it.InstanceID, it.ItemID); err != nil {
			return fmt.Errorf("failed to insert inventory item: %w", err)
		}
	}
	return nil
}

func (d *Database) loadInventory(characterID int64) ([]InventoryItem, error) {
	rows, err := d.db.Query(
		d.q("SELECT instance_id, item_id FROM inventory WHERE character_id = ? ORDER BY id"),
		characterID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer rows.Close()

	items := []InventoryItem{}
	for rows.Next() {
		var it InventoryItem
		if err := rows.Scan(&it.InstanceID, &it.ItemID); err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventory: %w", err)
	}
	return items, nil
}
