package world

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Data is the on-disk world definition. JSON files load as well, being
// valid YAML.
type Data struct {
	Regions []Region         `yaml:"regions"`
	Sectors []Sector         `yaml:"sectors"`
	Rooms   []RoomData       `yaml:"rooms"`
	Doors   []DoorData       `yaml:"doors"`
	Items   []ItemDefinition `yaml:"items"`
	Npcs    []NpcDefinition  `yaml:"npcs"`
	Spawns  []SpawnRule      `yaml:"spawns"`
}

// RoomData is one room entry. Exits map direction names to room ids.
type RoomData struct {
	ID               string            `yaml:"id"`
	Name             string            `yaml:"name"`
	Description      string            `yaml:"description"`
	DescriptionDay   string            `yaml:"description_day"`
	DescriptionNight string            `yaml:"description_night"`
	Sector           string            `yaml:"sector"`
	Outside          bool              `yaml:"outside"`
	Exits            map[string]string `yaml:"exits"`
}

// DoorData is one door entry. Status is "open", "closed", "locked" or empty.
type DoorData struct {
	ID     string   `yaml:"id"`
	Name   string   `yaml:"name"`
	Rooms  []string `yaml:"rooms"`
	Status string   `yaml:"status"`
}

// Load reads and validates a world file.
func Load(path string) (*World, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read world file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates world data.
func Parse(raw []byte) (*World, error) {
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse world file: %w", err)
	}
	return Build(data)
}

// Build validates data and assembles a World. Every problem found is
// reported, not just the first.
func Build(data Data) (*World, error) {
	w := &World{
		rooms:   make(map[string]*Room, len(data.Rooms)),
		doors:   make(map[roomPair]*Door, len(data.Doors)),
		sectors: make(map[string]*Sector, len(data.Sectors)),
		regions: make(map[string]*Region, len(data.Regions)),
		items:   make(map[string]*ItemDefinition, len(data.Items)),
		npcs:    make(map[string]*NpcDefinition, len(data.Npcs)),
	}
	var errs []error

	for i := range data.Regions {
		r := data.Regions[i]
		if _, dup := w.regions[r.ID]; dup || r.ID == "" {
			errs = append(errs, fmt.Errorf("region %q: missing or duplicate id", r.ID))
			continue
		}
		w.regions[r.ID] = &r
	}

	for i := range data.Sectors {
		s := data.Sectors[i]
		if _, dup := w.sectors[s.ID]; dup || s.ID == "" {
			errs = append(errs, fmt.Errorf("sector %q: missing or duplicate id", s.ID))
			continue
		}
		if _, ok := w.regions[s.RegionID]; !ok {
			errs = append(errs, fmt.Errorf("sector %q: unknown region %q", s.ID, s.RegionID))
		}
		w.sectors[s.ID] = &s
	}

	for _, rd := range data.Rooms {
		if _, dup := w.rooms[rd.ID]; dup || rd.ID == "" {
			errs = append(errs, fmt.Errorf("room %q: missing or duplicate id", rd.ID))
			continue
		}
		if rd.Sector != "" {
			if _, ok := w.sectors[rd.Sector]; !ok {
				errs = append(errs, fmt.Errorf("room %q: unknown sector %q", rd.ID, rd.Sector))
			}
		}
		room := &Room{
			ID:               rd.ID,
			Name:             rd.Name,
			Description:      rd.Description,
			DescriptionDay:   rd.DescriptionDay,
			DescriptionNight: rd.DescriptionNight,
			SectorID:         rd.Sector,
			Outside:          rd.Outside,
			Exits:            make(map[Direction]string, len(rd.Exits)),
		}
		for name, to := range rd.Exits {
			d, ok := ParseDirection(name)
			if !ok {
				errs = append(errs, fmt.Errorf("room %q: %w", rd.ID, &UnknownDirectionError{Name: name}))
				continue
			}
			room.Exits[d] = to
		}
		w.rooms[rd.ID] = room
	}

	for _, room := range w.rooms {
		for d, to := range room.Exits {
			if _, ok := w.rooms[to]; !ok {
				errs = append(errs, fmt.Errorf("room %q: exit %s leads to unknown room %q", room.ID, d, to))
			}
		}
	}

	for _, dd := range data.Doors {
		door, err := w.buildDoor(dd)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		w.doors[pairOf(door.Rooms[0], door.Rooms[1])] = door
	}

	for i := range data.Items {
		it := data.Items[i]
		if _, dup := w.items[it.ID]; dup || it.ID == "" {
			errs = append(errs, fmt.Errorf("item %q: missing or duplicate id", it.ID))
			continue
		}
		w.items[it.ID] = &it
	}

	for i := range data.Npcs {
		n := data.Npcs[i]
		if _, dup := w.npcs[n.ID]; dup || n.ID == "" {
			errs = append(errs, fmt.Errorf("npc %q: missing or duplicate id", n.ID))
			continue
		}
		w.npcs[n.ID] = &n
	}

	for _, sr := range data.Spawns {
		if err := w.checkSpawn(sr); err != nil {
			errs = append(errs, err)
			continue
		}
		w.spawns = append(w.spawns, sr)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid world: %w", err)
	}
	return w, nil
}

func (w *World) buildDoor(dd DoorData) (*Door, error) {
	if len(dd.Rooms) != 2 || dd.Rooms[0] == dd.Rooms[1] {
		return nil, fmt.Errorf("door %q: must join exactly two distinct rooms", dd.ID)
	}
	a, b := dd.Rooms[0], dd.Rooms[1]
	for _, id := range dd.Rooms {
		if _, ok := w.rooms[id]; !ok {
			return nil, fmt.Errorf("door %q: unknown room %q", dd.ID, id)
		}
	}
	if !w.adjacent(a, b) {
		return nil, fmt.Errorf("door %q: rooms %q and %q share no exit", dd.ID, a, b)
	}
	if _, dup := w.doors[pairOf(a, b)]; dup {
		return nil, fmt.Errorf("door %q: rooms %q and %q already have a door", dd.ID, a, b)
	}

	var flags DoorFlag
	switch dd.Status {
	case "open":
		flags = FlagOpen
	case "closed":
		flags = FlagClosed
	case "locked":
		flags = FlagLocked
	case "":
	default:
		return nil, fmt.Errorf("door %q: unknown status %q", dd.ID, dd.Status)
	}

	name := dd.Name
	if name == "" {
		name = "door"
	}
	return NewDoor(dd.ID, name, a, b, flags), nil
}

func (w *World) adjacent(a, b string) bool {
	for _, to := range w.rooms[a].Exits {
		if to == b {
			return true
		}
	}
	for _, to := range w.rooms[b].Exits {
		if to == a {
			return true
		}
	}
	return false
}

func (w *World) checkSpawn(sr SpawnRule) error {
	if _, ok := w.rooms[sr.RoomID]; !ok {
		return fmt.Errorf("spawn %s %q: unknown room %q", sr.Type, sr.DefinitionID, sr.RoomID)
	}
	if sr.Amount < 0 {
		return fmt.Errorf("spawn %s %q: negative amount", sr.Type, sr.DefinitionID)
	}
	switch sr.Type {
	case EntityItem:
		if _, ok := w.items[sr.DefinitionID]; !ok {
			return fmt.Errorf("spawn item %q: unknown definition", sr.DefinitionID)
		}
	case EntityNpc:
		if _, ok := w.npcs[sr.DefinitionID]; !ok {
			return fmt.Errorf("spawn npc %q: unknown definition", sr.DefinitionID)
		}
	default:
		return fmt.Errorf("spawn %q: unknown type %q", sr.DefinitionID, sr.Type)
	}
	return nil
}
