package command

import (
	"fmt"
	"math"
	"strings"

	"github.com/samber/lo"

	"github.com/lawnchairsociety/hearthmud/internal/message"
	"github.com/lawnchairsociety/hearthmud/internal/session"
)

var sayCommand = &Command{
	Names:       []string{"say"},
	Arguments:   []Arg{{Name: "message", Description: "what to say"}},
	UsageText:   "say <message>",
	SummaryText: "Say something to everyone in the room",
	Fn:          say,
}

var whoCommand = &Command{
	Names:       []string{"who"},
	SummaryText: "List who is online",
	BeforeLogin: true,
	Fn:          who,
}

func say(ctx *Context) error {
	if len(ctx.Args) == 0 {
		ctx.Reply("You try to think of something clever to say, but fail.")
		return nil
	}
	text := strings.Join(ctx.Args, " ")
	if ok, reason, wait := ctx.Flood.Allow(ctx.Session.ID(), text); !ok {
		return Userf("%s Try again in %d seconds.", reason, int(math.Ceil(wait.Seconds())))
	}
	if ctx.Chat != nil {
		res := ctx.Chat.Check(text)
		if res.Blocked {
			return &UserError{Msg: "That message contains language that is not allowed here."}
		}
		text = res.Text
	}
	ch := ctx.Character()
	ctx.Router.Vicinity(
		message.ToSession(ctx.Session, message.Text("You say, \"%s\"", text)),
		message.ToRoom(message.Text("%s says, \"%s\"", ch.Name(), text), ch.RoomID()),
		nil,
	)
	return nil
}

func who(ctx *Context) error {
	names := lo.FilterMap(ctx.Sessions.LoggedIn(), func(s *session.Session, _ int) (string, bool) {
		ch := s.Character()
		if ch == nil {
			return "", false
		}
		return ch.Name(), true
	})
	if len(names) == 0 {
		ctx.Reply("No one is online.")
		return nil
	}

	var b strings.Builder
	b.WriteString("Players online:")
	for _, n := range names {
		b.WriteString("\n  ")
		b.WriteString(n)
	}
	fmt.Fprintf(&b, "\n%d online.", len(names))
	ctx.Tell(b.String())
	return nil
}
