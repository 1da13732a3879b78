package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawnchairsociety/hearthmud/internal/world"
)

func TestReportShippedWorld(t *testing.T) {
	w, err := world.Load("../../data/world.yaml")
	require.NoError(t, err)

	var out strings.Builder
	unreachable := report(&out, w, "square")
	assert.Empty(t, unreachable)

	got := out.String()
	assert.Contains(t, got, "All 6 rooms are reachable from square.")
	assert.Contains(t, got, "Emberford (village)")
	assert.Contains(t, got, "north -> tavern (oak door, closed)")
	assert.Contains(t, got, "down  -> cellar (trapdoor, locked)")
	assert.Contains(t, got, "[square] Village Square [outside]")
	assert.NotContains(t, got, "one-way exit")
	assert.Contains(t, got, "npc  fox          x1 in clearing")
}

func TestReportFindsProblems(t *testing.T) {
	w, err := world.Build(world.Data{
		Rooms: []world.RoomData{
			{ID: "a", Name: "A", Exits: map[string]string{"north": "b"}},
			{ID: "b", Name: "B"},
			{ID: "island", Name: "Island"},
		},
	})
	require.NoError(t, err)

	var out strings.Builder
	unreachable := report(&out, w, "a")
	assert.Equal(t, []string{"island"}, unreachable)
	assert.Contains(t, out.String(), "WARNING: 1 rooms cannot be reached from a:")
	assert.Contains(t, out.String(), "note: one-way exit a north -> b")
}
