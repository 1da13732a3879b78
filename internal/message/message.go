// Package message routes text to sessions by scope: one session, a set of
// rooms, sectors or regions, or the whole server.
package message

import (
	"errors"
	"fmt"

	"github.com/lawnchairsociety/hearthmud/internal/session"
)

// ErrInvalidRoute marks a route built wrongly by a handler. Router.Send
// panics with an error wrapping it.
var ErrInvalidRoute = errors.New("message: invalid route")

// Scope selects how a route's recipients are found.
type Scope int

const (
	Direct Scope = iota
	Room
	Sector
	Region
	Server
)

func (s Scope) String() string {
	switch s {
	case Direct:
		return "direct"
	case Room:
		return "room"
	case Sector:
		return "sector"
	case Region:
		return "region"
	case Server:
		return "server"
	}
	return fmt.Sprintf("scope(%d)", int(s))
}

// Align controls how a message sits within the wrap width.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
)

// Message is display text plus layout hints.
type Message struct {
	Text  string
	Align Align
}

// Text is a left-aligned message.
func Text(format string, args ...any) Message {
	if len(args) == 0 {
		return Message{Text: format}
	}
	return Message{Text: fmt.Sprintf(format, args...)}
}

// Plain is a left-aligned message taken verbatim.
func Plain(text string) Message {
	return Message{Text: text}
}

// Centered is a centered message.
func Centered(text string) Message {
	return Message{Text: text, Align: AlignCenter}
}

// Route pairs a message with its recipients. Build routes with the To*
// constructors; the zero Route is invalid.
type Route struct {
	Message  Message
	Scope    Scope
	Target   *session.Session
	ScopeIDs []string
	Exclude  []*session.Session

	// NoPrompt suppresses the input prompt normally appended after delivery.
	NoPrompt bool
}

// ToSession addresses a single session.
func ToSession(s *session.Session, m Message) Route {
	return Route{Message: m, Scope: Direct, Target: s}
}

// ToRoom addresses everyone in the given rooms.
func ToRoom(m Message, roomIDs ...string) Route {
	return Route{Message: m, Scope: Room, ScopeIDs: roomIDs}
}

// ToSector addresses everyone in rooms of the given sectors.
func ToSector(m Message, sectorIDs ...string) Route {
	return Route{Message: m, Scope: Sector, ScopeIDs: sectorIDs}
}

// ToRegion addresses everyone in rooms of the given regions.
func ToRegion(m Message, regionIDs ...string) Route {
	return Route{Message: m, Scope: Region, ScopeIDs: regionIDs}
}

// ToServer addresses every logged-in session.
func ToServer(m Message) Route {
	return Route{Message: m, Scope: Server}
}

// Excluding returns a copy of r that skips the given sessions.
func (r Route) Excluding(s ...*session.Session) Route {
	r.Exclude = append(append([]*session.Session(nil), r.Exclude...), s...)
	return r
}

// WithoutPrompt returns a copy of r that does not append a prompt.
func (r Route) WithoutPrompt() Route {
	r.NoPrompt = true
	return r
}

// Validate reports a route that cannot be delivered.
func (r Route) Validate() error {
	switch r.Scope {
	case Direct:
		if r.Target == nil {
			return fmt.Errorf("%w: direct route without a target session", ErrInvalidRoute)
		}
	case Room, Sector, Region:
		if len(r.ScopeIDs) == 0 {
			return fmt.Errorf("%w: %s route without scope ids", ErrInvalidRoute, r.Scope)
		}
	case Server:
	default:
		return fmt.Errorf("%w: unknown scope %d", ErrInvalidRoute, int(r.Scope))
	}
	return nil
}

func (r Route) excludes(s *session.Session) bool {
	for _, ex := range r.Exclude {
		if ex == s {
			return true
		}
	}
	return false
}
