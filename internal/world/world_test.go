package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWorldYAML = `
regions:
  - id: vale
    name: The Vale
  - id: wilds
    name: The Wilds
sectors:
  - id: village
    name: Village
    region: vale
  - id: forest
    name: Forest
    region: wilds
rooms:
  - id: square
    name: Village Square
    description: A cobbled square.
    description_day: Sunlight warms the cobbles.
    description_night: Lanterns flicker over the cobbles.
    sector: village
    outside: true
    exits:
      north: tavern
      east: path
  - id: tavern
    name: The Tavern
    description: A smoky common room.
    sector: village
    exits:
      s: square
  - id: path
    name: Forest Path
    description: Trees crowd the path.
    sector: forest
    outside: true
    exits:
      west: square
doors:
  - id: tavern-door
    name: oak door
    rooms: [square, tavern]
    status: closed
items:
  - id: torch
    name: torch
    room_text: A torch lies here.
    keywords: [light]
  - id: fountain
    name: stone fountain
    room_text: A fountain burbles.
    stationary: true
npcs:
  - id: guard
    name: town guard
    room_text: A guard keeps watch.
    keywords: [guard]
spawns:
  - type: item
    id: torch
    room: square
    amount: 2
  - type: npc
    id: guard
    room: square
    amount: 1
`

func loadTestWorld(t *testing.T) *World {
	t.Helper()
	w, err := Parse([]byte(testWorldYAML))
	require.NoError(t, err)
	return w
}

func TestParseWorld(t *testing.T) {
	w := loadTestWorld(t)

	assert.Equal(t, 3, w.RoomCount())
	assert.Equal(t, []string{"path", "square", "tavern"}, w.RoomIDs())

	square, ok := w.RoomByID("square")
	require.True(t, ok)
	assert.Equal(t, "Village Square", square.Name)
	assert.Equal(t, []Direction{North, East}, square.ExitDirections())

	tavern, _ := w.RoomByID("tavern")
	to, ok := tavern.Exit(South)
	assert.True(t, ok)
	assert.Equal(t, "square", to)

	_, ok = w.ItemDefinition("torch")
	assert.True(t, ok)
	_, ok = w.NpcDefinition("guard")
	assert.True(t, ok)
	assert.Len(t, w.SpawnRules(), 2)
}

func TestSectorAndRegionOf(t *testing.T) {
	w := loadTestWorld(t)

	assert.Equal(t, "village", w.SectorOf("tavern"))
	assert.Equal(t, "vale", w.RegionOf("tavern"))
	assert.Equal(t, "wilds", w.RegionOf("path"))
	assert.Equal(t, "", w.SectorOf("nowhere"))
	assert.Equal(t, "", w.RegionOf("nowhere"))

	s, ok := w.Sector("forest")
	require.True(t, ok)
	assert.Equal(t, "Forest", s.Name)
	r, ok := w.Region("vale")
	require.True(t, ok)
	assert.Equal(t, "The Vale", r.Name)
}

func TestDoorLookupEitherOrder(t *testing.T) {
	w := loadTestWorld(t)

	d1, ok := w.DoorByRoomPair("square", "tavern")
	require.True(t, ok)
	d2, ok := w.DoorByRoomPair("tavern", "square")
	require.True(t, ok)
	assert.Same(t, d1, d2)
	assert.Equal(t, "tavern", d1.Other("square"))
	assert.Equal(t, "square", d1.Other("tavern"))

	_, ok = w.DoorByRoomPair("square", "path")
	assert.False(t, ok)
	door, status := w.DoorStatusBetween("square", "path")
	assert.Nil(t, door)
	assert.Equal(t, DoorAbsent, status)
}

func TestDoorTransitions(t *testing.T) {
	d := NewDoor("d", "gate", "a", "b", FlagClosed)
	assert.Equal(t, DoorClosed, d.Status())

	d.Open()
	assert.Equal(t, FlagOpen, d.Flags())
	assert.Equal(t, DoorOpen, d.Status())

	d.Close()
	assert.Equal(t, FlagClosed, d.Flags())

	d.Lock()
	assert.Equal(t, DoorLocked, d.Status())
	assert.False(t, d.Status().Passable())
}

func TestDoorStatusPrecedence(t *testing.T) {
	tests := map[string]struct {
		flags DoorFlag
		exp   DoorStatus
	}{
		"none":          {flags: 0, exp: DoorAbsent},
		"open":          {flags: FlagOpen, exp: DoorOpen},
		"open closed":   {flags: FlagOpen | FlagClosed, exp: DoorClosed},
		"closed locked": {flags: FlagClosed | FlagLocked, exp: DoorLocked},
		"all":           {flags: FlagOpen | FlagClosed | FlagLocked, exp: DoorLocked},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.exp, NewDoor("d", "door", "a", "b", tt.flags).Status())
		})
	}
}

func TestFlaglessDoorIsNoOp(t *testing.T) {
	d := NewDoor("d", "arch", "a", "b", 0)
	assert.NotPanics(t, func() { _ = d.Status() })
	assert.Equal(t, DoorAbsent, d.Status())
	assert.True(t, d.Status().Passable())
	assert.Equal(t, DoorFlag(0), d.Flags())

	var missing *Door
	assert.Equal(t, DoorAbsent, StatusOf(missing))
}

func TestDescriptionFor(t *testing.T) {
	w := loadTestWorld(t)

	square, _ := w.RoomByID("square")
	assert.Equal(t, "Sunlight warms the cobbles.", square.DescriptionFor(true))
	assert.Equal(t, "Lanterns flicker over the cobbles.", square.DescriptionFor(false))

	tavern, _ := w.RoomByID("tavern")
	assert.Equal(t, "A smoky common room.", tavern.DescriptionFor(false))

	path, _ := w.RoomByID("path")
	assert.Equal(t, "Trees crowd the path.", path.DescriptionFor(true))
}

func TestRoomContents(t *testing.T) {
	w := loadTestWorld(t)
	square, _ := w.RoomByID("square")

	torch, ok := w.NewItem("torch")
	require.True(t, ok)
	square.AddItem(torch)
	def, _ := w.NpcDefinition("guard")
	square.AddNpc(NewNpcInstance(def))

	found, ok := square.FindItem("LIGHT")
	require.True(t, ok)
	assert.Same(t, torch, found)
	_, ok = square.FindNpc("guard")
	assert.True(t, ok)
	assert.Equal(t, 1, square.Count(EntityItem, "torch"))
	assert.Equal(t, 1, square.Count(EntityNpc, "guard"))

	assert.True(t, square.RemoveItem(torch))
	assert.False(t, square.RemoveItem(torch))
	assert.Empty(t, square.Items())

	_, ok = w.NewItem("nothing")
	assert.False(t, ok)
}

func TestParseDirection(t *testing.T) {
	tests := map[string]struct {
		in  string
		exp Direction
		ok  bool
	}{
		"short":      {in: "n", exp: North, ok: true},
		"long":       {in: "west", exp: West, ok: true},
		"mixed case": {in: "DoWn", exp: Down, ok: true},
		"padded":     {in: " u ", exp: Up, ok: true},
		"unknown":    {in: "northeast", ok: false},
		"empty":      {in: "", ok: false},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			d, ok := ParseDirection(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.exp, d)
			}
		})
	}
	assert.Equal(t, South, North.Opposite())
	assert.Equal(t, Up, Down.Opposite())
}

func TestBuildValidation(t *testing.T) {
	tests := map[string]struct {
		data Data
		exp  string
	}{
		"unknown exit": {
			data: Data{Rooms: []RoomData{{ID: "a", Exits: map[string]string{"north": "b"}}}},
			exp:  `exit north leads to unknown room "b"`,
		},
		"bad direction": {
			data: Data{Rooms: []RoomData{{ID: "a", Exits: map[string]string{"sideways": "a"}}}},
			exp:  `unknown direction "sideways"`,
		},
		"sector without region": {
			data: Data{Sectors: []Sector{{ID: "s", RegionID: "r"}}},
			exp:  `sector "s": unknown region "r"`,
		},
		"door without exit": {
			data: Data{
				Rooms: []RoomData{{ID: "a"}, {ID: "b"}},
				Doors: []DoorData{{ID: "d", Rooms: []string{"a", "b"}}},
			},
			exp: "share no exit",
		},
		"door bad status": {
			data: Data{
				Rooms: []RoomData{{ID: "a", Exits: map[string]string{"n": "b"}}, {ID: "b"}},
				Doors: []DoorData{{ID: "d", Rooms: []string{"a", "b"}, Status: "ajar"}},
			},
			exp: `unknown status "ajar"`,
		},
		"spawn unknown item": {
			data: Data{
				Rooms:  []RoomData{{ID: "a"}},
				Spawns: []SpawnRule{{Type: EntityItem, DefinitionID: "x", RoomID: "a", Amount: 1}},
			},
			exp: `spawn item "x": unknown definition`,
		},
		"duplicate room": {
			data: Data{Rooms: []RoomData{{ID: "a"}, {ID: "a"}}},
			exp:  `room "a": missing or duplicate id`,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Build(tt.data)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.exp)
		})
	}
}

func TestBuildReportsEveryProblem(t *testing.T) {
	_, err := Build(Data{
		Rooms:   []RoomData{{ID: "a", Exits: map[string]string{"n": "x", "s": "y"}}},
		Sectors: []Sector{{ID: "s", RegionID: "none"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"x"`)
	assert.Contains(t, err.Error(), `"y"`)
	assert.Contains(t, err.Error(), `unknown region "none"`)
}

func TestFlaglessDoorLoads(t *testing.T) {
	w, err := Build(Data{
		Rooms: []RoomData{{ID: "a", Exits: map[string]string{"e": "b"}}, {ID: "b"}},
		Doors: []DoorData{{ID: "arch", Rooms: []string{"b", "a"}}},
	})
	require.NoError(t, err)
	d, status := w.DoorStatusBetween("a", "b")
	require.NotNil(t, d)
	assert.Equal(t, DoorAbsent, status)
	assert.Equal(t, "door", d.Name)
}

func TestLoadShippedWorld(t *testing.T) {
	w, err := Load("../../data/world.yaml")
	require.NoError(t, err)
	assert.Equal(t, 6, w.RoomCount())

	_, status := w.DoorStatusBetween("square", "cellar")
	assert.Equal(t, DoorLocked, status)
	assert.Equal(t, "vale", w.RegionOf("clearing"))
	assert.Equal(t, "woods", w.SectorOf("clearing"))
}
