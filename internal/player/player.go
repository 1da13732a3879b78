// Package player holds the live, in-memory state of a logged-in character.
package player

import (
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/lawnchairsociety/hearthmud/internal/database"
	"github.com/lawnchairsociety/hearthmud/internal/world"
)

// Character is a character in play. It is shared between the event loop
// and maintenance ticks, so every field sits behind mu.
type Character struct {
	mu           sync.RWMutex
	name         string
	passwordHash string
	roomID       string
	inventory    []*world.ItemInstance
}

// New creates a character standing in roomID with nothing carried.
func New(name, passwordHash, roomID string) *Character {
	return &Character{name: name, passwordHash: passwordHash, roomID: roomID}
}

// FromRecord rebuilds a character from its stored record. Inventory entries
// whose definition no longer exists are skipped and their item ids returned.
func FromRecord(rec *database.Character, w *world.World) (*Character, []string) {
	c := New(rec.Name, rec.PasswordHash, rec.RoomID)
	var missing []string
	for _, it := range rec.Inventory {
		def, ok := w.ItemDefinition(it.ItemID)
		if !ok {
			missing = append(missing, it.ItemID)
			continue
		}
		c.inventory = append(c.inventory, &world.ItemInstance{ID: it.InstanceID, Def: def})
	}
	return c, missing
}

// Record snapshots the character for the store.
func (c *Character) Record() *database.Character {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return &database.Character{
		Name:         c.name,
		PasswordHash: c.passwordHash,
		RoomID:       c.roomID,
		Inventory: lo.Map(c.inventory, func(it *world.ItemInstance, _ int) database.InventoryItem {
			return database.InventoryItem{InstanceID: it.ID, ItemID: it.Def.ID}
		}),
	}
}

// Name never changes after creation.
func (c *Character) Name() string {
	return c.name
}

// PasswordHash returns the stored hash.
func (c *Character) PasswordHash() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.passwordHash
}

// RoomID returns the current room.
func (c *Character) RoomID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID
}

// MoveTo sets the current room.
func (c *Character) MoveTo(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomID = roomID
}

// Inventory returns a copy of the carried items.
func (c *Character) Inventory() []*world.ItemInstance {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*world.ItemInstance(nil), c.inventory...)
}

// AddItem puts an item in the inventory.
func (c *Character) AddItem(it *world.ItemInstance) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inventory = append(c.inventory, it)
}

// FindItem returns the first carried item matching keyword.
func (c *Character) FindItem(keyword string) (*world.ItemInstance, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lo.Find(c.inventory, func(it *world.ItemInstance) bool { return it.Matches(keyword) })
}

// RemoveItem takes the first item matching keyword out of the inventory.
func (c *Character) RemoveItem(keyword string) (*world.ItemInstance, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, idx, ok := lo.FindIndexOf(c.inventory, func(it *world.ItemInstance) bool { return it.Matches(keyword) })
	if !ok {
		return nil, false
	}
	it := c.inventory[idx]
	c.inventory = append(c.inventory[:idx], c.inventory[idx+1:]...)
	return it, true
}

// Matches reports whether s names this character.
func (c *Character) Matches(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), c.name)
}
