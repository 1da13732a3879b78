package command

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/lawnchairsociety/hearthmud/internal/auth"
	"github.com/lawnchairsociety/hearthmud/internal/chat"
	"github.com/lawnchairsociety/hearthmud/internal/config"
	"github.com/lawnchairsociety/hearthmud/internal/database"
	"github.com/lawnchairsociety/hearthmud/internal/gametime"
	"github.com/lawnchairsociety/hearthmud/internal/message"
	"github.com/lawnchairsociety/hearthmud/internal/namefilter"
	"github.com/lawnchairsociety/hearthmud/internal/password"
	"github.com/lawnchairsociety/hearthmud/internal/player"
	"github.com/lawnchairsociety/hearthmud/internal/session"
	"github.com/lawnchairsociety/hearthmud/internal/world"
)

// ErrNotLoggedIn is returned by Dispatch for commands that need a character.
var ErrNotLoggedIn = &UserError{Msg: "You must log in first."}

// CharacterStore is the part of database.Store the commands use.
type CharacterStore interface {
	FindCharacterByName(name string) (*database.Character, error)
	CreateCharacter(c *database.Character) error
	SaveCharacter(c *database.Character) error
}

// UserError is a domain failure reported to the player as-is.
type UserError struct {
	Msg string
}

func (e *UserError) Error() string { return e.Msg }

// Userf builds a UserError.
func Userf(format string, args ...any) error {
	return &UserError{Msg: fmt.Sprintf(format, args...)}
}

// Game holds everything a handler may touch.
type Game struct {
	World     *world.World
	Sessions  *session.Registry
	Router    *message.Router
	Store     CharacterStore
	Passwords password.Hasher
	Policy    config.PasswordConfig
	Names     *namefilter.Filter
	Limiter   *auth.LoginRateLimiter
	Chat      *chat.Filter
	Flood     *chat.FloodLimiter
	Clock     *gametime.Clock
	Table     *Table
	Log       *slog.Logger

	StartRoom     string
	StartingItems []string
}

// Context is what a handler runs with.
type Context struct {
	*Game
	Session *session.Session
	Alias   string
	Args    []string
}

// Character returns the session's character, or nil before login.
func (c *Context) Character() *player.Character {
	return c.Session.Character()
}

// Reply sends text to the acting session.
func (c *Context) Reply(format string, args ...any) {
	c.Router.Send(message.ToSession(c.Session, message.Text(format, args...)))
}

// Tell sends text to the acting session verbatim.
func (c *Context) Tell(text string) {
	c.Router.Send(message.ToSession(c.Session, message.Plain(text)))
}

// Room returns the character's current room.
func (c *Context) Room() *world.Room {
	ch := c.Character()
	if ch == nil {
		return nil
	}
	room, _ := c.World.RoomByID(ch.RoomID())
	return room
}

// Dispatch runs a resolved command for s. Commands that need a character
// fail with ErrNotLoggedIn before login.
func (g *Game) Dispatch(s *session.Session, res Resolution) error {
	if res.Handler == nil {
		return nil
	}
	if !res.Handler.PreLogin() && !s.LoggedIn() {
		return ErrNotLoggedIn
	}
	return res.Handler.Run(&Context{Game: g, Session: s, Alias: res.Alias, Args: res.Args})
}

// Save writes a character back to the store.
func (g *Game) Save(c *player.Character) error {
	if err := g.Store.SaveCharacter(c.Record()); err != nil {
		return fmt.Errorf("save %s: %w", c.Name(), err)
	}
	return nil
}

// IsUserError reports whether err should be shown to the player verbatim.
func IsUserError(err error) (*UserError, bool) {
	var ue *UserError
	ok := errors.As(err, &ue)
	return ue, ok
}
