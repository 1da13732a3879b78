package world

import (
	"sync"

	"github.com/samber/lo"
)

// Room is a location. Its static fields never change after load; the items
// and NPCs in it are guarded by the room's own lock.
type Room struct {
	ID               string
	Name             string
	Description      string
	DescriptionDay   string
	DescriptionNight string
	SectorID         string
	Outside          bool
	Exits            map[Direction]string

	mu    sync.RWMutex
	items []*ItemInstance
	npcs  []*NpcInstance
}

// DescriptionFor picks the day or night variant for outside rooms, falling
// back to the default text.
func (r *Room) DescriptionFor(isDay bool) string {
	if r.Outside {
		if isDay && r.DescriptionDay != "" {
			return r.DescriptionDay
		}
		if !isDay && r.DescriptionNight != "" {
			return r.DescriptionNight
		}
	}
	return r.Description
}

// Exit returns the destination room id in direction d.
func (r *Room) Exit(d Direction) (string, bool) {
	to, ok := r.Exits[d]
	return to, ok
}

// ExitDirections lists available exits in display order.
func (r *Room) ExitDirections() []Direction {
	return lo.Filter(Directions, func(d Direction, _ int) bool {
		_, ok := r.Exits[d]
		return ok
	})
}

// AddItem places an item on the floor.
func (r *Room) AddItem(it *ItemInstance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, it)
}

// FindItem returns the first item matching keyword.
func (r *Room) FindItem(keyword string) (*ItemInstance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Find(r.items, func(it *ItemInstance) bool { return it.Matches(keyword) })
}

// RemoveItem takes a specific instance out of the room.
func (r *Room) RemoveItem(it *ItemInstance) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, cur := range r.items {
		if cur == it {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return true
		}
	}
	return false
}

// Items returns a copy of the items on the floor.
func (r *Room) Items() []*ItemInstance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*ItemInstance(nil), r.items...)
}

// AddNpc places an NPC in the room.
func (r *Room) AddNpc(n *NpcInstance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.npcs = append(r.npcs, n)
}

// FindNpc returns the first NPC matching keyword.
func (r *Room) FindNpc(keyword string) (*NpcInstance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Find(r.npcs, func(n *NpcInstance) bool { return n.Matches(keyword) })
}

// Npcs returns a copy of the NPCs present.
func (r *Room) Npcs() []*NpcInstance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*NpcInstance(nil), r.npcs...)
}

// Count returns how many instances of a definition are in the room.
func (r *Room) Count(kind EntityType, defID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	switch kind {
	case EntityItem:
		return lo.CountBy(r.items, func(it *ItemInstance) bool { return it.Def.ID == defID })
	case EntityNpc:
		return lo.CountBy(r.npcs, func(n *NpcInstance) bool { return n.Def.ID == defID })
	}
	return 0
}
