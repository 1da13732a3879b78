package world

import "sync"

// DoorFlag is one bit of a door's status set.
type DoorFlag uint8

const (
	FlagOpen DoorFlag = 1 << iota
	FlagClosed
	FlagLocked
)

// DoorStatus is the result of asking whether a passage is blocked.
type DoorStatus int

const (
	// DoorAbsent means there is no door, or the door carries no status.
	// Movement and "open" treat it exactly like DoorOpen.
	DoorAbsent DoorStatus = iota
	DoorOpen
	DoorClosed
	DoorLocked
)

func (s DoorStatus) String() string {
	switch s {
	case DoorOpen:
		return "open"
	case DoorClosed:
		return "closed"
	case DoorLocked:
		return "locked"
	default:
		return "absent"
	}
}

// Passable reports whether a character may walk through.
func (s DoorStatus) Passable() bool {
	return s == DoorAbsent || s == DoorOpen
}

// Door joins exactly two rooms. Its status is shared by both sides.
type Door struct {
	ID    string
	Name  string
	Rooms [2]string

	mu    sync.Mutex
	flags DoorFlag
}

// NewDoor returns a door between a and b with the given flags.
func NewDoor(id, name, a, b string, flags DoorFlag) *Door {
	return &Door{ID: id, Name: name, Rooms: [2]string{a, b}, flags: flags}
}

// Flags returns the current flag set.
func (d *Door) Flags() DoorFlag {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.flags
}

// Status collapses the flag set. Locked wins over Closed, Closed over Open.
// A door without flags reports DoorAbsent and is left untouched.
func (d *Door) Status() DoorStatus {
	if d == nil {
		return DoorAbsent
	}
	flags := d.Flags()
	switch {
	case flags&FlagLocked != 0:
		return DoorLocked
	case flags&FlagClosed != 0:
		return DoorClosed
	case flags&FlagOpen != 0:
		return DoorOpen
	default:
		return DoorAbsent
	}
}

// Open sets the flags to exactly {Open}.
func (d *Door) Open() {
	d.set(FlagOpen)
}

// Close sets the flags to exactly {Closed}.
func (d *Door) Close() {
	d.set(FlagClosed)
}

// Lock sets the flags to exactly {Locked}.
func (d *Door) Lock() {
	d.set(FlagLocked)
}

func (d *Door) set(f DoorFlag) {
	d.mu.Lock()
	d.flags = f
	d.mu.Unlock()
}

// Other returns the room on the far side from roomID.
func (d *Door) Other(roomID string) string {
	if d.Rooms[0] == roomID {
		return d.Rooms[1]
	}
	return d.Rooms[0]
}

// StatusOf is Status on a possibly nil door.
func StatusOf(d *Door) DoorStatus {
	return d.Status()
}

type roomPair [2]string

func pairOf(a, b string) roomPair {
	if b < a {
		a, b = b, a
	}
	return roomPair{a, b}
}
