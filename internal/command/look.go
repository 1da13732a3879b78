package command

import (
	"strings"

	"github.com/lawnchairsociety/hearthmud/internal/message"
	"github.com/lawnchairsociety/hearthmud/internal/world"
)

var lookCommand = &Command{
	Names:       []string{"look", "l"},
	Arguments:   []Arg{{Name: "target", Description: "something or someone to examine"}},
	SummaryText: "Look at the room or at something in it",
	Fn:          look,
}

var timeCommand = &Command{
	Names:       []string{"time"},
	SummaryText: "Show the time of day",
	Fn: func(ctx *Context) error {
		ctx.Tell(ctx.Clock.Describe())
		return nil
	},
}

func look(ctx *Context) error {
	room := ctx.Room()
	if room == nil {
		return Userf("You are nowhere at all.")
	}
	if len(ctx.Args) == 0 {
		ctx.Tell(ctx.DescribeRoom(room))
		return nil
	}

	target := strings.Join(ctx.Args, " ")
	if it, ok := room.FindItem(target); ok {
		ctx.Tell(describeThing(it.Def.Name, it.Def.Description))
		return nil
	}
	if it, ok := ctx.Character().FindItem(target); ok {
		ctx.Tell(describeThing(it.Def.Name, it.Def.Description))
		return nil
	}
	if n, ok := room.FindNpc(target); ok {
		ctx.Tell(describeThing(n.Def.Name, n.Def.Description))
		return nil
	}
	for _, other := range ctx.Sessions.LoggedIn() {
		ch := other.Character()
		if ch != nil && ch.RoomID() == room.ID && ch.Matches(target) {
			if other == ctx.Session {
				ctx.Reply("You look yourself over. Nothing seems out of place.")
			} else {
				ctx.Reply("%s is standing here.", ch.Name())
			}
			return nil
		}
	}
	return Userf("You don't see that here.")
}

func describeThing(name, description string) string {
	if description == "" {
		description = "You see nothing special."
	}
	return name + "\n" + description
}

// DescribeRoom renders what the acting character sees in room.
func (c *Context) DescribeRoom(room *world.Room) string {
	isDay := c.Clock == nil || c.Clock.IsDay()

	var b strings.Builder
	b.WriteString(room.Name)
	b.WriteString("\n")
	b.WriteString(room.DescriptionFor(isDay))
	b.WriteString("\n")
	b.WriteString(c.exitLine(room))

	for _, it := range room.Items() {
		b.WriteString("\n")
		b.WriteString(roomText(it.Def.RoomText, it.Def.Name))
	}
	for _, n := range room.Npcs() {
		b.WriteString("\n")
		b.WriteString(roomText(n.Def.RoomText, n.Def.Name))
	}
	for _, other := range c.Sessions.LoggedIn() {
		ch := other.Character()
		if other == c.Session || ch == nil || ch.RoomID() != room.ID {
			continue
		}
		b.WriteString("\n")
		b.WriteString(ch.Name())
		b.WriteString(" is here.")
	}
	return b.String()
}

func (c *Context) exitLine(room *world.Room) string {
	dirs := room.ExitDirections()
	if len(dirs) == 0 {
		return "Exits: none"
	}
	parts := make([]string, 0, len(dirs))
	for _, d := range dirs {
		to, _ := room.Exit(d)
		label := d.String()
		switch _, status := c.World.DoorStatusBetween(room.ID, to); status {
		case world.DoorClosed:
			label += " (closed)"
		case world.DoorLocked:
			label += " (locked)"
		}
		parts = append(parts, label)
	}
	return "Exits: " + strings.Join(parts, ", ")
}

func roomText(text, name string) string {
	if text != "" {
		return text
	}
	return "A " + name + " is here."
}

// lookRoute is the actor's view of a room as a Direct route.
func (c *Context) lookRoute(room *world.Room) message.Route {
	return message.ToSession(c.Session, message.Plain(c.DescribeRoom(room)))
}
