// Package session tracks live client connections and their login state.
package session

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lawnchairsociety/hearthmud/internal/player"
)

// State is a session's login state.
type State int

const (
	PreLogin State = iota
	LoggedIn
)

func (s State) String() string {
	if s == LoggedIn {
		return "logged-in"
	}
	return "pre-login"
}

var (
	ErrNilCharacter   = errors.New("session: login requires a character")
	ErrDuplicateID    = errors.New("session: duplicate session id")
	ErrUnknownSession = errors.New("session: unknown session")
)

// Conn is the transport handle a session writes to.
type Conn interface {
	ID() string
	RemoteIP() string
	Write(p []byte) error
	Close() error
}

// Registration is a character draft waiting for "finalize".
type Registration struct {
	Name         string
	PasswordHash string
}

// Session is the server-side state of one connection. A session is
// LoggedIn exactly when it holds a character.
type Session struct {
	conn        Conn
	connectedAt time.Time
	seq         uint64

	mu           sync.Mutex
	state        State
	character    *player.Character
	registration *Registration
}

// New wraps a connection.
func New(conn Conn) *Session {
	return &Session{conn: conn, connectedAt: time.Now()}
}

func (s *Session) ID() string             { return s.conn.ID() }
func (s *Session) Conn() Conn             { return s.conn }
func (s *Session) RemoteIP() string       { return s.conn.RemoteIP() }
func (s *Session) ConnectedAt() time.Time { return s.connectedAt }

// Write sends raw bytes. Delivery failures are left for the transport to
// notice.
func (s *Session) Write(p []byte) error {
	return s.conn.Write(p)
}

// State returns the login state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LoggedIn is State() == LoggedIn.
func (s *Session) LoggedIn() bool {
	return s.State() == LoggedIn
}

// Character returns the logged-in character or nil.
func (s *Session) Character() *player.Character {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.character
}

// Registration returns the pending draft or nil.
func (s *Session) Registration() *Registration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registration
}

// SetRegistration replaces the pending draft. nil clears it.
func (s *Session) SetRegistration(r *Registration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registration = r
}

// Registry is the set of live sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	nextSeq  uint64
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Add registers a new session.
func (r *Registry) Add(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.ID()]; ok {
		return ErrDuplicateID
	}
	r.nextSeq++
	s.seq = r.nextSeq
	r.sessions[s.ID()] = s
	return nil
}

// Remove drops a session and returns it.
func (r *Registry) Remove(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	return s, ok
}

// Get looks a session up by id.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Snapshot copies the live sessions in connect order.
func (r *Registry) Snapshot() []*Session {
	r.mu.RLock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// LoggedIn is Snapshot filtered to logged-in sessions.
func (r *Registry) LoggedIn() []*Session {
	all := r.Snapshot()
	out := all[:0]
	for _, s := range all {
		if s.LoggedIn() {
			out = append(out, s)
		}
	}
	return out
}

// MarkLoggedIn attaches c to s. Uniqueness of character names across
// sessions is the caller's job.
func (r *Registry) MarkLoggedIn(s *Session, c *player.Character) error {
	if c == nil {
		return ErrNilCharacter
	}
	if _, ok := r.Get(s.ID()); !ok {
		return ErrUnknownSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.character = c
	s.state = LoggedIn
	s.registration = nil
	return nil
}

// MarkLoggedOut detaches and returns the character, if any.
func (r *Registry) MarkLoggedOut(s *Session) *player.Character {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.character
	s.character = nil
	s.state = PreLogin
	return c
}

// FindByCharacterName returns the session playing name, case-insensitively.
func (r *Registry) FindByCharacterName(name string) (*Session, bool) {
	for _, s := range r.Snapshot() {
		if c := s.Character(); c != nil && strings.EqualFold(c.Name(), name) {
			return s, true
		}
	}
	return nil, false
}
