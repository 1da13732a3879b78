package command

import (
	"github.com/lawnchairsociety/hearthmud/internal/message"
	"github.com/lawnchairsociety/hearthmud/internal/world"
)

var directionArg = Arg{Name: "direction", Description: "which way the door is", Required: true}

var openCommand = &Command{
	Names:       []string{"open"},
	Arguments:   []Arg{directionArg},
	SummaryText: "Open a door",
	Fn:          openDoor,
}

var closeCommand = &Command{
	Names:       []string{"close"},
	Arguments:   []Arg{directionArg},
	SummaryText: "Close a door",
	Fn:          closeDoor,
}

// doorway finds the exit named by the first argument.
func doorway(ctx *Context) (from *world.Room, to string, err error) {
	dir, ok := world.ParseDirection(ctx.Args[0])
	if !ok {
		return nil, "", Userf("'%s' is not a direction.", ctx.Args[0])
	}
	from = ctx.Room()
	if from == nil {
		return nil, "", nil
	}
	to, _ = from.Exit(dir)
	return from, to, nil
}

func openDoor(ctx *Context) error {
	from, to, err := doorway(ctx)
	if err != nil {
		return err
	}
	if to == "" {
		return Userf("There is nothing to open there.")
	}

	door, status := ctx.World.DoorStatusBetween(from.ID, to)
	switch status {
	case world.DoorAbsent, world.DoorOpen:
		return Userf("It is already open.")
	case world.DoorLocked:
		return Userf("The %s is locked.", door.Name)
	}

	door.Open()
	name := ctx.Character().Name()
	adj := message.ToRoom(message.Text("The %s opens.", door.Name), to)
	ctx.Router.Vicinity(
		message.ToSession(ctx.Session, message.Text("You open the %s.", door.Name)),
		message.ToRoom(message.Text("%s opens the %s.", name, door.Name), from.ID),
		&adj,
	)
	return nil
}

func closeDoor(ctx *Context) error {
	from, to, err := doorway(ctx)
	if err != nil {
		return err
	}
	if to == "" {
		return Userf("There is nothing to close there.")
	}

	door, status := ctx.World.DoorStatusBetween(from.ID, to)
	switch status {
	case world.DoorAbsent:
		return Userf("There is no door there.")
	case world.DoorClosed, world.DoorLocked:
		return Userf("It is already closed.")
	}

	door.Close()
	name := ctx.Character().Name()
	adj := message.ToRoom(message.Text("The %s closes.", door.Name), to)
	ctx.Router.Vicinity(
		message.ToSession(ctx.Session, message.Text("You close the %s.", door.Name)),
		message.ToRoom(message.Text("%s closes the %s.", name, door.Name), from.ID),
		&adj,
	)
	return nil
}
