package database

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bbolt "go.etcd.io/bbolt"
)

var bucketCharacters = []byte("characters")

// BoltStore is a Store on an embedded bbolt file. Characters are JSON values
// keyed by lowercased name.
type BoltStore struct {
	bolt *bbolt.DB
}

// OpenBolt opens or creates a bbolt file and ensures its buckets exist.
func OpenBolt(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("boltstore: create directory: %w", err)
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("boltstore: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCharacters)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("boltstore: create buckets: %w", err)
	}
	return &BoltStore{bolt: db}, nil
}

// Close closes the bbolt file.
func (s *BoltStore) Close() error {
	return s.bolt.Close()
}

func characterKey(name string) []byte {
	return []byte(strings.ToLower(name))
}

// FindCharacterByName returns ErrCharacterNotFound when the key is absent.
func (s *BoltStore) FindCharacterByName(name string) (*Character, error) {
	var c Character
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketCharacters).Get(characterKey(name))
		if data == nil {
			return ErrCharacterNotFound
		}
		return json.Unmarshal(data, &c)
	})
	if err != nil {
		return nil, err
	}
	if c.Inventory == nil {
		c.Inventory = []InventoryItem{}
	}
	return &c, nil
}

// CreateCharacter stores a new record; an existing key yields ErrCharacterExists.
func (s *BoltStore) CreateCharacter(c *Character) error {
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketCharacters)
		key := characterKey(c.Name)
		if b.Get(key) != nil {
			return ErrCharacterExists
		}

		id, err := b.NextSequence()
		if err != nil {
			return fmt.Errorf("boltstore: next id: %w", err)
		}
		rec := *c
		rec.ID = int64(id)
		rec.CreatedAt = time.Now().UTC()
		data, err := json.Marshal(&rec)
		if err != nil {
			return fmt.Errorf("boltstore: encode %s: %w", c.Name, err)
		}
		if err := b.Put(key, data); err != nil {
			return err
		}
		c.ID, c.CreatedAt = rec.ID, rec.CreatedAt
		return nil
	})
}

// SaveCharacter overwrites an existing record; ErrCharacterNotFound otherwise.
func (s *BoltStore) SaveCharacter(c *Character) error {
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketCharacters)
		key := characterKey(c.Name)
		existing := b.Get(key)
		if existing == nil {
			return ErrCharacterNotFound
		}
		var prev Character
		if err := json.Unmarshal(existing, &prev); err != nil {
			return fmt.Errorf("boltstore: decode %s: %w", c.Name, err)
		}

		now := time.Now().UTC()
		rec := *c
		rec.ID, rec.CreatedAt, rec.LastPlayed = prev.ID, prev.CreatedAt, &now
		data, err := json.Marshal(&rec)
		if err != nil {
			return fmt.Errorf("boltstore: encode %s: %w", c.Name, err)
		}
		if err := b.Put(key, data); err != nil {
			return err
		}
		c.ID, c.LastPlayed = rec.ID, rec.LastPlayed
		return nil
	})
}
