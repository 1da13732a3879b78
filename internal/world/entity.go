package world

import (
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// EntityType distinguishes spawnable kinds.
type EntityType string

const (
	EntityItem EntityType = "item"
	EntityNpc  EntityType = "npc"
)

// ItemDefinition is the static template shared by every instance of an item.
type ItemDefinition struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	RoomText    string   `yaml:"room_text"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords"`
	Stationary  bool     `yaml:"stationary"`
}

// NpcDefinition is the static template shared by every instance of an NPC.
type NpcDefinition struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	RoomText    string   `yaml:"room_text"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords"`
}

// SpawnRule keeps Amount instances of a definition in a room.
type SpawnRule struct {
	Type         EntityType `yaml:"type"`
	DefinitionID string     `yaml:"id"`
	RoomID       string     `yaml:"room"`
	Amount       int        `yaml:"amount"`
}

// ItemInstance is one concrete item, on the ground or carried.
type ItemInstance struct {
	ID  string
	Def *ItemDefinition
}

// NpcInstance is one concrete NPC standing in a room.
type NpcInstance struct {
	ID  string
	Def *NpcDefinition
}

// NewItemInstance creates an instance with a fresh id.
func NewItemInstance(def *ItemDefinition) *ItemInstance {
	return &ItemInstance{ID: uuid.NewString(), Def: def}
}

// NewNpcInstance creates an instance with a fresh id.
func NewNpcInstance(def *NpcDefinition) *NpcInstance {
	return &NpcInstance{ID: uuid.NewString(), Def: def}
}

// Matches reports whether keyword names the item.
func (i *ItemInstance) Matches(keyword string) bool {
	return matches(keyword, i.Def.Name, i.Def.Keywords)
}

// Matches reports whether keyword names the NPC.
func (n *NpcInstance) Matches(keyword string) bool {
	return matches(keyword, n.Def.Name, n.Def.Keywords)
}

// matches compares case-insensitively against keywords and the words of name.
func matches(keyword, name string, keywords []string) bool {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return false
	}
	if strings.EqualFold(keyword, name) {
		return true
	}
	candidates := append(strings.Fields(strings.ToLower(name)), lo.Map(keywords, func(k string, _ int) string {
		return strings.ToLower(k)
	})...)
	return lo.Contains(candidates, keyword)
}
