package server

import (
	"log/slog"

	"github.com/lawnchairsociety/hearthmud/internal/world"
)

// Spawner tops rooms back up to the amounts their spawn rules ask for.
type Spawner struct {
	world *world.World
	log   *slog.Logger
}

// NewSpawner returns a spawner over w.
func NewSpawner(w *world.World, log *slog.Logger) *Spawner {
	return &Spawner{world: w, log: log}
}

// Replenish creates whatever instances are missing and returns how many
// items and NPCs it added. Surplus instances are left alone.
func (s *Spawner) Replenish() (items, npcs int) {
	for _, rule := range s.world.SpawnRules() {
		room, ok := s.world.RoomByID(rule.RoomID)
		if !ok {
			s.log.Warn("spawn rule for unknown room", "room", rule.RoomID, "id", rule.DefinitionID)
			continue
		}

		missing := rule.Amount - room.Count(rule.Type, rule.DefinitionID)
		for i := 0; i < missing; i++ {
			switch rule.Type {
			case world.EntityItem:
				it, ok := s.world.NewItem(rule.DefinitionID)
				if !ok {
					s.log.Warn("spawn rule for unknown item", "id", rule.DefinitionID)
					break
				}
				room.AddItem(it)
				items++
			case world.EntityNpc:
				def, ok := s.world.NpcDefinition(rule.DefinitionID)
				if !ok {
					s.log.Warn("spawn rule for unknown npc", "id", rule.DefinitionID)
					break
				}
				room.AddNpc(world.NewNpcInstance(def))
				npcs++
			}
		}
	}
	if items+npcs > 0 {
		s.log.Debug("replenished spawns", "items", items, "npcs", npcs)
	}
	return items, npcs
}
