package command

import (
	"github.com/lawnchairsociety/hearthmud/internal/message"
	"github.com/lawnchairsociety/hearthmud/internal/world"
)

// movementCommands returns one command per direction, e.g. "north" and "n".
func movementCommands() []Handler {
	out := make([]Handler, 0, len(world.Directions))
	for _, d := range world.Directions {
		out = append(out, &Command{
			Names:       []string{d.String(), d.Short()},
			SummaryText: "Walk " + d.String(),
			Fn:          func(ctx *Context) error { return move(ctx, d) },
		})
	}
	return out
}

func move(ctx *Context, dir world.Direction) error {
	ch := ctx.Character()
	from := ctx.Room()
	if from == nil {
		return Userf("You can't go that way.")
	}
	to, ok := from.Exit(dir)
	if !ok {
		return Userf("You can't go that way.")
	}
	dest, ok := ctx.World.RoomByID(to)
	if !ok {
		return Userf("You can't go that way.")
	}

	door, status := ctx.World.DoorStatusBetween(from.ID, dest.ID)
	switch status {
	case world.DoorClosed:
		return Userf("The %s is closed.", door.Name)
	case world.DoorLocked:
		return Userf("The %s is locked.", door.Name)
	}

	ch.MoveTo(dest.ID)
	arrive := message.ToRoom(message.Text("%s arrives from %s.", ch.Name(), arrivalFrom(dir)), dest.ID)
	ctx.Router.Vicinity(
		ctx.lookRoute(dest),
		message.ToRoom(message.Text("%s leaves %s.", ch.Name(), dir), from.ID),
		&arrive,
	)
	return nil
}

// arrivalFrom names where someone who walked dir came from.
func arrivalFrom(dir world.Direction) string {
	switch back := dir.Opposite(); back {
	case world.Up:
		return "above"
	case world.Down:
		return "below"
	default:
		return "the " + back.String()
	}
}
