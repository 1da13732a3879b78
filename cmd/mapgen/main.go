// mapgen prints a text map of a world file: rooms grouped by sector with
// their exits and doors, spawn placements, and any rooms the start room
// cannot reach.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/lawnchairsociety/hearthmud/internal/world"
)

func main() {
	inputFile := flag.String("input", "data/world.yaml", "Path to world YAML file")
	start := flag.String("start", "square", "Room the connectivity check starts from")
	outputFile := flag.String("output", "", "Output file (empty for stdout)")
	flag.Parse()

	w, err := world.Load(*inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var out strings.Builder
	unreachable := report(&out, w, *start)

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, []byte(out.String()), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Map written to %s\n", *outputFile)
	} else {
		fmt.Print(out.String())
	}
	if len(unreachable) > 0 {
		os.Exit(1)
	}
}

// report writes the map and returns the ids of unreachable rooms.
func report(out io.Writer, w *world.World, start string) []string {
	fmt.Fprintf(out, "World Map (%d rooms)\n", w.RoomCount())
	fmt.Fprintln(out, strings.Repeat("=", 60))

	unreachable := unreachableFrom(w, start)
	if len(unreachable) > 0 {
		fmt.Fprintf(out, "WARNING: %d rooms cannot be reached from %s:\n", len(unreachable), start)
		for _, id := range unreachable {
			fmt.Fprintf(out, "  - %s\n", id)
		}
	} else {
		fmt.Fprintf(out, "All %d rooms are reachable from %s.\n", w.RoomCount(), start)
	}
	for _, e := range oneWayExits(w) {
		fmt.Fprintf(out, "note: one-way exit %s\n", e)
	}
	fmt.Fprintln(out)

	bySector := lo.GroupBy(w.RoomIDs(), w.SectorOf)
	sectors := lo.Keys(bySector)
	slices.Sort(sectors)
	for _, sid := range sectors {
		title := "(no sector)"
		if sid != "" {
			title = sid
		}
		if s, ok := w.Sector(sid); ok {
			title = fmt.Sprintf("%s (%s)", s.Name, sid)
		}
		fmt.Fprintln(out, title)
		fmt.Fprintln(out, strings.Repeat("-", 40))
		for _, id := range bySector[sid] {
			writeRoom(out, w, id)
		}
		fmt.Fprintln(out)
	}

	if rules := w.SpawnRules(); len(rules) > 0 {
		fmt.Fprintln(out, "Spawns:")
		for _, r := range rules {
			fmt.Fprintf(out, "  %-4s %-12s x%d in %s\n", r.Type, r.DefinitionID, r.Amount, r.RoomID)
		}
	}
	return unreachable
}

func writeRoom(out io.Writer, w *world.World, id string) {
	room, _ := w.RoomByID(id)
	marker := ""
	if room.Outside {
		marker = " [outside]"
	}
	fmt.Fprintf(out, "[%s] %s%s\n", id, room.Name, marker)

	for _, d := range room.ExitDirections() {
		to, _ := room.Exit(d)
		line := fmt.Sprintf("    %-5s -> %s", d, to)
		if door, status := w.DoorStatusBetween(id, to); door != nil {
			line += fmt.Sprintf(" (%s, %s)", door.Name, status)
		}
		fmt.Fprintln(out, line)
	}
}

// unreachableFrom walks exits breadth-first from start.
func unreachableFrom(w *world.World, start string) []string {
	visited := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		room, ok := w.RoomByID(queue[0])
		queue = queue[1:]
		if !ok {
			continue
		}
		for _, to := range room.Exits {
			if !visited[to] {
				visited[to] = true
				queue = append(queue, to)
			}
		}
	}
	return lo.Filter(w.RoomIDs(), func(id string, _ int) bool { return !visited[id] })
}

// oneWayExits lists exits with no exit leading back.
func oneWayExits(w *world.World) []string {
	var out []string
	for _, id := range w.RoomIDs() {
		room, _ := w.RoomByID(id)
		for _, d := range room.ExitDirections() {
			to, _ := room.Exit(d)
			back, ok := w.RoomByID(to)
			if !ok || !lo.Contains(lo.Values(back.Exits), id) {
				out = append(out, fmt.Sprintf("%s %s -> %s", id, d, to))
			}
		}
	}
	return out
}
