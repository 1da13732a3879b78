package command

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lawnchairsociety/hearthmud/internal/config"
	"github.com/lawnchairsociety/hearthmud/internal/database"
	"github.com/lawnchairsociety/hearthmud/internal/message"
	"github.com/lawnchairsociety/hearthmud/internal/player"
	"github.com/lawnchairsociety/hearthmud/internal/session"
)

var validate = validator.New()

var credentialArgs = []Arg{
	{Name: "name", Description: "your character's name", Required: true},
	{Name: "password", Description: "your password", Required: true},
}

var loginCommand = &Command{
	Names:       []string{"login", "connect"},
	Arguments:   credentialArgs,
	SummaryText: "Log in to an existing character",
	BeforeLogin: true,
	Fn:          login,
}

var registerCommand = &Command{
	Names:       []string{"register", "create"},
	Arguments:   credentialArgs,
	SummaryText: "Start creating a new character",
	BeforeLogin: true,
	Fn:          register,
}

var finalizeCommand = &Command{
	Names:       []string{"finalize"},
	SummaryText: "Create the character you registered",
	BeforeLogin: true,
	Fn:          finalize,
}

var logoutCommand = &Command{
	Names:       []string{"logout"},
	SummaryText: "Return to the login prompt",
	Fn:          logout,
}

var quitCommand = &Command{
	Names:       []string{"quit", "exit"},
	SummaryText: "Save and disconnect",
	BeforeLogin: true,
	Fn:          quit,
}

// normalizeName turns "aLDRIC" into "Aldric". A Caser keeps state, so each
// call gets its own.
func normalizeName(name string) string {
	return cases.Title(language.Und).String(name)
}

func (g *Game) startRoom() string {
	if _, ok := g.World.RoomByID(g.StartRoom); ok {
		return g.StartRoom
	}
	if ids := g.World.RoomIDs(); len(ids) > 0 {
		return ids[0]
	}
	return g.StartRoom
}

func login(ctx *Context) error {
	if ctx.Session.LoggedIn() {
		return Userf("You are already logged in.")
	}
	ip := ctx.Session.RemoteIP()
	if locked, left := ctx.Limiter.IsLocked(ip); locked {
		return Userf("Too many failed login attempts. Try again in %d seconds.", ceilSeconds(left))
	}

	name, pass := ctx.Args[0], ctx.Args[1]
	rec, err := ctx.Store.FindCharacterByName(name)
	switch {
	case errors.Is(err, database.ErrCharacterNotFound):
		ctx.Limiter.RecordFailure(ip)
		return Userf("Invalid name or password.")
	case err != nil:
		return fmt.Errorf("login %s: %w", name, err)
	}
	if !ctx.Passwords.Verify(pass, rec.PasswordHash) {
		ctx.Limiter.RecordFailure(ip)
		ctx.Log.Info("failed login", "name", rec.Name, "ip", ip)
		return Userf("Invalid name or password.")
	}
	if _, taken := ctx.Sessions.FindByCharacterName(rec.Name); taken {
		return Userf("That character is already logged in.")
	}
	ctx.Limiter.RecordSuccess(ip)

	ch, missing := player.FromRecord(rec, ctx.World)
	if len(missing) > 0 {
		ctx.Log.Warn("dropped unknown items from inventory", "character", rec.Name, "items", missing)
	}
	if _, ok := ctx.World.RoomByID(ch.RoomID()); !ok {
		ctx.Log.Warn("character in unknown room, moving to start", "character", rec.Name, "room", ch.RoomID())
		ch.MoveTo(ctx.startRoom())
	}
	return ctx.enterWorld(ch, "Welcome back, %s!")
}

// enterWorld attaches ch to the session and announces the arrival.
func (c *Context) enterWorld(ch *player.Character, greeting string) error {
	if err := c.Sessions.MarkLoggedIn(c.Session, ch); err != nil {
		return fmt.Errorf("enter world: %w", err)
	}
	c.Log.Info("character logged in", "character", ch.Name(), "session", c.Session.ID())

	room, _ := c.World.RoomByID(ch.RoomID())
	text := fmt.Sprintf(greeting, ch.Name())
	if room != nil {
		text += "\n\n" + c.DescribeRoom(room)
	}
	c.Router.Vicinity(
		message.ToSession(c.Session, message.Plain(text)),
		message.ToRoom(message.Text("%s has arrived.", ch.Name()), ch.RoomID()),
		nil,
	)
	return nil
}

func register(ctx *Context) error {
	if ctx.Session.LoggedIn() {
		return Userf("You are already logged in.")
	}
	name, pass := ctx.Args[0], ctx.Args[1]
	if err := validate.Var(name, "alpha,min=3,max=16"); err != nil {
		return Userf("Names must be 3 to 16 letters with no spaces or symbols.")
	}
	name = normalizeName(name)
	if err := ctx.Names.Check(name); err != nil {
		return Userf("That name is not allowed.")
	}
	if err := ctx.Policy.CheckPassword(pass); err != nil {
		var pe *config.PasswordError
		if errors.As(err, &pe) {
			return &UserError{Msg: pe.Msg + " Requirements: " + ctx.Policy.RequirementsText() + "."}
		}
		return err
	}

	_, err := ctx.Store.FindCharacterByName(name)
	switch {
	case err == nil:
		return Userf("That name is already taken.")
	case !errors.Is(err, database.ErrCharacterNotFound):
		return fmt.Errorf("register %s: %w", name, err)
	}

	hash, err := ctx.Passwords.Hash(pass)
	if err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}
	ctx.Session.SetRegistration(&session.Registration{Name: name, PasswordHash: hash})
	ctx.Reply("%s is ready. Type 'finalize' to create the character, or 'register' again to start over.", name)
	return nil
}

func finalize(ctx *Context) error {
	if ctx.Session.LoggedIn() {
		return Userf("You are already logged in.")
	}
	draft := ctx.Session.Registration()
	if draft == nil {
		return Userf("You have nothing to finalize.")
	}

	ch := player.New(draft.Name, draft.PasswordHash, ctx.startRoom())
	for _, id := range ctx.StartingItems {
		it, ok := ctx.World.NewItem(id)
		if !ok {
			ctx.Log.Warn("unknown starting item", "item", id)
			continue
		}
		ch.AddItem(it)
	}

	if err := ctx.Store.CreateCharacter(ch.Record()); err != nil {
		if errors.Is(err, database.ErrCharacterExists) {
			ctx.Session.SetRegistration(nil)
			return Userf("That name is already taken.")
		}
		return fmt.Errorf("finalize %s: %w", draft.Name, err)
	}
	ctx.Log.Info("character created", "character", ch.Name(), "ip", ctx.Session.RemoteIP())
	return ctx.enterWorld(ch, "Welcome, %s!")
}

func logout(ctx *Context) error {
	ch := ctx.Character()
	if err := ctx.Save(ch); err != nil {
		return err
	}
	ctx.Router.Send(message.ToRoom(message.Text("%s has left.", ch.Name()), ch.RoomID()).Excluding(ctx.Session))
	ctx.Sessions.MarkLoggedOut(ctx.Session)
	ctx.Log.Info("character logged out", "character", ch.Name())
	ctx.Reply("Goodbye, %s.", ch.Name())
	return nil
}

func quit(ctx *Context) error {
	if ch := ctx.Character(); ch != nil {
		if err := ctx.Save(ch); err != nil {
			ctx.Log.Error("failed to save on quit", "character", ch.Name(), "error", err)
		}
		ctx.Router.Send(message.ToRoom(message.Text("%s has quit.", ch.Name()), ch.RoomID()).Excluding(ctx.Session))
		ctx.Sessions.MarkLoggedOut(ctx.Session)
	}
	ctx.Router.Send(message.ToSession(ctx.Session, message.Text("Farewell!")).WithoutPrompt())
	ctx.Sessions.Remove(ctx.Session.ID())
	ctx.Flood.Forget(ctx.Session.ID())
	_ = ctx.Session.Conn().Close()
	return nil
}

func ceilSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}
