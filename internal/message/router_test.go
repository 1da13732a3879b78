package message

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawnchairsociety/hearthmud/internal/player"
	"github.com/lawnchairsociety/hearthmud/internal/session"
)

type recordingConn struct {
	id   string
	fail bool

	mu     sync.Mutex
	writes []string
}

func (c *recordingConn) ID() string       { return c.id }
func (c *recordingConn) RemoteIP() string { return "127.0.0.1" }
func (c *recordingConn) Close() error     { return nil }
func (c *recordingConn) Write(p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, string(p))
	if c.fail {
		return errors.New("broken pipe")
	}
	return nil
}

func (c *recordingConn) output() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Join(c.writes, "")
}

type fakeLocator map[string][2]string

func (l fakeLocator) SectorOf(roomID string) string { return l[roomID][0] }
func (l fakeLocator) RegionOf(roomID string) string { return l[roomID][1] }

var testLocator = fakeLocator{
	"square": {"village", "vale"},
	"tavern": {"village", "vale"},
	"path":   {"forest", "wilds"},
	"cave":   {"deep", "wilds"},
}

type fixture struct {
	reg    *session.Registry
	router *Router
	conns  map[string]*recordingConn
	byName map[string]*session.Session
}

// newFixture logs in one character per name=room pair; a pair without a
// room leaves the session at the login screen.
func newFixture(t *testing.T, who ...string) *fixture {
	t.Helper()
	f := &fixture{
		reg:    session.NewRegistry(),
		conns:  map[string]*recordingConn{},
		byName: map[string]*session.Session{},
	}
	router, err := NewRouter(f.reg, testLocator, Options{Prompt: "> "}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	f.router = router

	for _, pair := range who {
		name, room, _ := strings.Cut(pair, "=")
		conn := &recordingConn{id: name}
		s := session.New(conn)
		require.NoError(t, f.reg.Add(s))
		if room != "" {
			require.NoError(t, f.reg.MarkLoggedIn(s, player.New(name, "h", room)))
		}
		f.conns[name] = conn
		f.byName[name] = s
	}
	return f
}

func (f *fixture) received() []string {
	var names []string
	for _, s := range f.reg.Snapshot() {
		if f.conns[s.ID()].output() != "" {
			names = append(names, s.ID())
		}
	}
	return names
}

func names(sessions []*session.Session) []string {
	out := make([]string, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.ID())
	}
	return out
}

func TestRecipientsByScope(t *testing.T) {
	f := newFixture(t, "ann=square", "bo=tavern", "cy=path", "di=cave", "ed=square", "guest=")

	tests := map[string]struct {
		route Route
		exp   []string
	}{
		"room":            {route: ToRoom(Text("x"), "square"), exp: []string{"ann", "ed"}},
		"two rooms":       {route: ToRoom(Text("x"), "square", "path"), exp: []string{"ann", "cy", "ed"}},
		"room excluding":  {route: ToRoom(Text("x"), "square").Excluding(f.byName["ann"]), exp: []string{"ed"}},
		"sector":          {route: ToSector(Text("x"), "village"), exp: []string{"ann", "bo", "ed"}},
		"region":          {route: ToRegion(Text("x"), "wilds"), exp: []string{"cy", "di"}},
		"server":          {route: ToServer(Text("x")), exp: []string{"ann", "bo", "cy", "di", "ed"}},
		"server excl":     {route: ToServer(Text("x")).Excluding(f.byName["bo"], f.byName["cy"]), exp: []string{"ann", "di", "ed"}},
		"direct guest":    {route: ToSession(f.byName["guest"], Text("x")), exp: []string{"guest"}},
		"direct excluded": {route: ToSession(f.byName["ann"], Text("x")).Excluding(f.byName["ann"]), exp: []string{}},
		"empty room":      {route: ToRoom(Text("x"), "nowhere"), exp: []string{}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.exp, names(f.router.Recipients(tt.route)))
		})
	}
}

func TestRoomRecipientProperty(t *testing.T) {
	rooms := []string{"square", "tavern", "path"}
	var who []string
	for i := 0; i < 30; i++ {
		who = append(who, string(rune('a'+i%26))+strings.Repeat("x", i/26)+"="+rooms[i%3])
	}
	f := newFixture(t, who...)

	excluded := map[*session.Session]bool{}
	route := ToRoom(Text("x"), "square", "path")
	for i, s := range f.reg.Snapshot() {
		if i%4 == 0 {
			route = route.Excluding(s)
			excluded[s] = true
		}
	}

	got := f.router.Recipients(route)
	gotSet := map[*session.Session]bool{}
	for _, s := range got {
		gotSet[s] = true
	}
	for _, s := range f.reg.Snapshot() {
		room := s.Character().RoomID()
		want := (room == "square" || room == "path") && !excluded[s]
		assert.Equal(t, want, gotSet[s], "session %s in %s", s.ID(), room)
	}
}

func TestSendFormatting(t *testing.T) {
	f := newFixture(t, "ann=square", "bo=square")

	f.router.Send(ToSession(f.byName["ann"], Text("Hello.\nSecond line.")))
	assert.Equal(t, "\nHello.\n\rSecond line.\n\r\r\n> ", f.conns["ann"].output())

	f.router.Send(ToRoom(Text("Ann waves."), "square").Excluding(f.byName["ann"]).WithoutPrompt())
	assert.Equal(t, "\rAnn waves.\n\r", f.conns["bo"].output())
}

func TestSendSurvivesFailedRecipient(t *testing.T) {
	f := newFixture(t, "ann=square", "bo=square", "cy=square")
	f.conns["ann"].fail = true

	f.router.Send(ToRoom(Text("Thunder rolls."), "square"))
	assert.Equal(t, []string{"ann", "bo", "cy"}, f.received())
}

func TestVicinity(t *testing.T) {
	f := newFixture(t, "ann=square", "bo=square", "cy=tavern", "di=path")
	ann := f.byName["ann"]
	adj := ToRoom(Text("The oak door opens."), "tavern")

	f.router.Vicinity(
		ToSession(ann, Text("You open the oak door.")),
		ToRoom(Text("Ann opens the oak door."), "square"),
		&adj,
	)

	assert.Contains(t, f.conns["ann"].output(), "You open the oak door.")
	assert.NotContains(t, f.conns["ann"].output(), "Ann opens")
	assert.Contains(t, f.conns["bo"].output(), "Ann opens the oak door.")
	assert.Contains(t, f.conns["cy"].output(), "The oak door opens.")
	assert.Empty(t, f.conns["di"].output())
}

func TestVicinityAttemptsAllLegsAfterFailedDirect(t *testing.T) {
	f := newFixture(t, "ann=square", "bo=square", "cy=tavern")
	f.conns["ann"].fail = true
	adj := ToRoom(Text("c"), "tavern")

	f.router.Vicinity(ToSession(f.byName["ann"], Text("a")), ToRoom(Text("b"), "square"), &adj)

	assert.Len(t, f.conns["ann"].writes, 1)
	assert.Contains(t, f.conns["bo"].output(), "b")
	assert.Contains(t, f.conns["cy"].output(), "c")
}

func TestVicinityAdjoiningExcludesActor(t *testing.T) {
	f := newFixture(t, "ann=square")
	adj := ToRoom(Text("adjoining"), "square")
	f.router.Vicinity(ToSession(f.byName["ann"], Text("actor")), ToRoom(Text("room"), "square"), &adj)

	out := f.conns["ann"].output()
	assert.Contains(t, out, "actor")
	assert.NotContains(t, out, "room")
	assert.NotContains(t, out, "adjoining")
}

func TestInvalidRoutesPanic(t *testing.T) {
	f := newFixture(t, "ann=square")

	tests := map[string]Route{
		"direct without target": {Scope: Direct, Message: Text("x")},
		"room without ids":      ToRoom(Text("x")),
		"sector without ids":    ToSector(Text("x")),
		"region without ids":    ToRegion(Text("x")),
		"unknown scope":         {Scope: Scope(42)},
	}
	for name, rt := range tests {
		t.Run(name, func(t *testing.T) {
			defer func() {
				rec := recover()
				require.NotNil(t, rec)
				err, ok := rec.(error)
				require.True(t, ok)
				assert.ErrorIs(t, err, ErrInvalidRoute)
			}()
			f.router.Send(rt)
		})
	}

	assert.Panics(t, func() {
		f.router.Vicinity(Route{Scope: Direct}, ToRoom(Text("x"), "square"), nil)
	})
	assert.Empty(t, f.conns["ann"].output(), "no leg is sent when any leg is invalid")
}

func TestEncoding(t *testing.T) {
	enc, err := NewEncoder("latin1")
	require.NoError(t, err)
	assert.Equal(t, []byte{'c', 'a', 'f', 0xe9, ' ', '?'}, enc("café ☃"))

	enc, err = NewEncoder("cp437")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xc9}, enc("╔"))

	enc, err = NewEncoder("")
	require.NoError(t, err)
	assert.Equal(t, []byte("☃"), enc("☃"))

	_, err = NewEncoder("ebcdic")
	assert.Error(t, err)
}

func TestFormatterWrapAndCenter(t *testing.T) {
	f := Formatter{Width: 10}

	body := f.Body(Text("one two three four"), Room)
	assert.Equal(t, "\rone two\n\rthree four\n\r", body)

	body = f.Body(Centered("hi"), Direct)
	assert.Equal(t, "\n    hi\n\r", body)
}
