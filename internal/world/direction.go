package world

import (
	"fmt"
	"strings"
)

// Direction is a compass or vertical exit direction.
type Direction int

const (
	North Direction = iota
	South
	East
	West
	Up
	Down
)

// Directions lists every direction in display order.
var Directions = []Direction{North, South, East, West, Up, Down}

var directionNames = [...]string{"north", "south", "east", "west", "up", "down"}

func (d Direction) String() string {
	if d < North || d > Down {
		return "unknown"
	}
	return directionNames[d]
}

// Short returns the one-letter alias.
func (d Direction) Short() string {
	return d.String()[:1]
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	case Up:
		return Down
	default:
		return Up
	}
}

// ParseDirection accepts long and one-letter names in any case.
func ParseDirection(s string) (Direction, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, d := range Directions {
		if s == d.String() || s == d.Short() {
			return d, true
		}
	}
	return 0, false
}

// UnknownDirectionError names an unparseable direction.
type UnknownDirectionError struct {
	Name string
}

func (e *UnknownDirectionError) Error() string {
	return fmt.Sprintf("unknown direction %q", e.Name)
}
