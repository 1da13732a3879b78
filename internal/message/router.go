package message

import (
	"log/slog"

	"github.com/samber/lo"

	"github.com/lawnchairsociety/hearthmud/internal/session"
)

// Locator resolves the grouping of a room. *world.World implements it.
type Locator interface {
	SectorOf(roomID string) string
	RegionOf(roomID string) string
}

// Router delivers routes to sessions in the registry.
type Router struct {
	sessions *session.Registry
	locator  Locator
	format   Formatter
	encode   Encoder
	log      *slog.Logger
}

// Options configures output formatting.
type Options struct {
	Encoding  string
	WrapWidth int
	Prompt    string
}

// NewRouter returns a router. It fails only on an unknown encoding.
func NewRouter(sessions *session.Registry, locator Locator, opts Options, log *slog.Logger) (*Router, error) {
	enc, err := NewEncoder(opts.Encoding)
	if err != nil {
		return nil, err
	}
	return &Router{
		sessions: sessions,
		locator:  locator,
		format:   Formatter{Width: opts.WrapWidth, Prompt: opts.Prompt},
		encode:   enc,
		log:      log,
	}, nil
}

// Send delivers r to every matching session. A failed write to one
// recipient does not stop the rest. An invalid route panics.
func (r *Router) Send(rt Route) {
	if err := rt.Validate(); err != nil {
		panic(err)
	}
	body := r.format.Body(rt.Message, rt.Scope)
	for _, s := range r.Recipients(rt) {
		out := body
		if !rt.NoPrompt {
			out += r.format.PromptText()
		}
		if err := s.Write(r.encode(out)); err != nil {
			r.log.Debug("Delivery failed", "session", s.ID(), "scope", rt.Scope.String(), "error", err)
		}
	}
}

// Recipients computes who rt reaches without sending anything.
func (r *Router) Recipients(rt Route) []*session.Session {
	if rt.Scope == Direct {
		if rt.Target == nil || rt.excludes(rt.Target) {
			return nil
		}
		return []*session.Session{rt.Target}
	}

	return lo.Filter(r.sessions.LoggedIn(), func(s *session.Session, _ int) bool {
		if rt.excludes(s) {
			return false
		}
		c := s.Character()
		if c == nil {
			return false
		}
		switch rt.Scope {
		case Room:
			return lo.Contains(rt.ScopeIDs, c.RoomID())
		case Sector:
			return lo.Contains(rt.ScopeIDs, r.locator.SectorOf(c.RoomID()))
		case Region:
			return lo.Contains(rt.ScopeIDs, r.locator.RegionOf(c.RoomID()))
		case Server:
			return true
		}
		return false
	})
}

// Vicinity tells the actor one thing and bystanders another. It sends the
// actor leg, then the room leg and the optional adjoining leg, both with the
// actor excluded. Every leg is attempted whatever happens to the others.
func (r *Router) Vicinity(actor Route, room Route, adjoining *Route) {
	legs := []Route{actor}
	if actor.Target != nil {
		room = room.Excluding(actor.Target)
	}
	legs = append(legs, room)
	if adjoining != nil {
		adj := *adjoining
		if actor.Target != nil {
			adj = adj.Excluding(actor.Target)
		}
		legs = append(legs, adj)
	}
	for _, leg := range legs {
		if err := leg.Validate(); err != nil {
			panic(err)
		}
	}
	for _, leg := range legs {
		r.Send(leg)
	}
}

// Prompt writes just the prompt to s.
func (r *Router) Prompt(s *session.Session) {
	_ = s.Write(r.encode(r.format.PromptText()))
}
