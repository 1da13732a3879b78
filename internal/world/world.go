// Package world is the read-model of the game world: rooms, doors, sectors,
// regions, item and NPC definitions, and spawn rules. Static data never
// changes after load; door status and room contents carry their own locks.
package world

import (
	"sort"
)

// Sector groups rooms for broadcast scope. Every sector belongs to a region.
type Sector struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	RegionID string `yaml:"region"`
}

// Region groups sectors.
type Region struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// World owns every room, door and definition. It is built once by Load or
// Build and shared by reference.
type World struct {
	rooms   map[string]*Room
	doors   map[roomPair]*Door
	sectors map[string]*Sector
	regions map[string]*Region
	items   map[string]*ItemDefinition
	npcs    map[string]*NpcDefinition
	spawns  []SpawnRule
}

// RoomByID looks up a room.
func (w *World) RoomByID(id string) (*Room, bool) {
	r, ok := w.rooms[id]
	return r, ok
}

// DoorByRoomPair finds the door joining a and b in either order.
func (w *World) DoorByRoomPair(a, b string) (*Door, bool) {
	d, ok := w.doors[pairOf(a, b)]
	return d, ok
}

// DoorStatusBetween returns DoorAbsent when no door joins a and b.
func (w *World) DoorStatusBetween(a, b string) (*Door, DoorStatus) {
	d, ok := w.DoorByRoomPair(a, b)
	if !ok {
		return nil, DoorAbsent
	}
	return d, d.Status()
}

// ItemDefinition looks up an item template.
func (w *World) ItemDefinition(id string) (*ItemDefinition, bool) {
	d, ok := w.items[id]
	return d, ok
}

// NpcDefinition looks up an NPC template.
func (w *World) NpcDefinition(id string) (*NpcDefinition, bool) {
	d, ok := w.npcs[id]
	return d, ok
}

// SpawnRules returns the spawn rules in file order.
func (w *World) SpawnRules() []SpawnRule {
	return append([]SpawnRule(nil), w.spawns...)
}

// Sector looks up a sector.
func (w *World) Sector(id string) (*Sector, bool) {
	s, ok := w.sectors[id]
	return s, ok
}

// Region looks up a region.
func (w *World) Region(id string) (*Region, bool) {
	r, ok := w.regions[id]
	return r, ok
}

// SectorOf returns the sector id of a room, or "" when unknown.
func (w *World) SectorOf(roomID string) string {
	if r, ok := w.rooms[roomID]; ok {
		return r.SectorID
	}
	return ""
}

// RegionOf returns the region id of a room's sector, or "" when unknown.
func (w *World) RegionOf(roomID string) string {
	if s, ok := w.sectors[w.SectorOf(roomID)]; ok {
		return s.RegionID
	}
	return ""
}

// RoomIDs returns every room id, sorted.
func (w *World) RoomIDs() []string {
	ids := make([]string, 0, len(w.rooms))
	for id := range w.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RoomCount returns the number of rooms.
func (w *World) RoomCount() int {
	return len(w.rooms)
}

// NewItem instantiates an item definition.
func (w *World) NewItem(defID string) (*ItemInstance, bool) {
	def, ok := w.items[defID]
	if !ok {
		return nil, false
	}
	return NewItemInstance(def), true
}
