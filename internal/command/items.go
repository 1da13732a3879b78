package command

import (
	"strings"

	"github.com/lawnchairsociety/hearthmud/internal/message"
)

var itemArg = Arg{Name: "item", Description: "the item's name or keyword", Required: true}

var getCommand = &Command{
	Names:       []string{"get", "take"},
	Arguments:   []Arg{itemArg},
	SummaryText: "Pick up an item",
	Fn:          getItem,
}

var dropCommand = &Command{
	Names:       []string{"drop"},
	Arguments:   []Arg{itemArg},
	SummaryText: "Drop an item you are carrying",
	Fn:          dropItem,
}

var inventoryCommand = &Command{
	Names:       []string{"inventory", "inv", "i"},
	SummaryText: "List what you are carrying",
	Fn:          inventory,
}

func getItem(ctx *Context) error {
	room := ctx.Room()
	if room == nil {
		return Userf("You don't see that here.")
	}
	it, ok := room.FindItem(strings.Join(ctx.Args, " "))
	if !ok {
		return Userf("You don't see that here.")
	}
	if it.Def.Stationary {
		return Userf("You can't take that.")
	}
	if !room.RemoveItem(it) {
		return Userf("You don't see that here.")
	}

	ch := ctx.Character()
	ch.AddItem(it)
	ctx.Router.Vicinity(
		message.ToSession(ctx.Session, message.Text("You pick up the %s.", it.Def.Name)),
		message.ToRoom(message.Text("%s picks up the %s.", ch.Name(), it.Def.Name), room.ID),
		nil,
	)
	return nil
}

func dropItem(ctx *Context) error {
	ch := ctx.Character()
	room := ctx.Room()
	if room == nil {
		return Userf("You can't drop things here.")
	}
	it, ok := ch.RemoveItem(strings.Join(ctx.Args, " "))
	if !ok {
		return Userf("You aren't carrying that.")
	}

	room.AddItem(it)
	ctx.Router.Vicinity(
		message.ToSession(ctx.Session, message.Text("You drop the %s.", it.Def.Name)),
		message.ToRoom(message.Text("%s drops the %s.", ch.Name(), it.Def.Name), room.ID),
		nil,
	)
	return nil
}

func inventory(ctx *Context) error {
	items := ctx.Character().Inventory()
	if len(items) == 0 {
		ctx.Reply("You are carrying nothing.")
		return nil
	}
	var b strings.Builder
	b.WriteString("You are carrying:")
	for _, it := range items {
		b.WriteString("\n  ")
		b.WriteString(it.Def.Name)
	}
	ctx.Tell(b.String())
	return nil
}
