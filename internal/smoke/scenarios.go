package smoke

import (
	"fmt"

	"github.com/lawnchairsociety/hearthmud/internal/testclient"
)

// Scenarios run by RunAll. They assume data/world.yaml and a start room of
// "square".
var Scenarios = []Scenario{
	{Name: "Connection", Run: connection},
	{Name: "Account", Run: account},
	{Name: "Bad login", Run: badLogin},
	{Name: "Movement", Run: movement},
	{Name: "Doors", Run: doors},
	{Name: "Say", Run: say},
	{Name: "Inventory", Run: inventory},
	{Name: "Who", Run: who},
}

func connection(s *Step) error {
	c, err := s.connect()
	if err != nil {
		return err
	}
	if err := s.do(c, "look", "You must log in first."); err != nil {
		return err
	}
	return s.do(c, "help", "login")
}

func account(s *Step) error {
	c, err := s.player("Acct")
	if err != nil {
		return err
	}
	name := c.Name
	if err := s.do(c, "logout", "Goodbye, "+name); err != nil {
		return err
	}

	c.Clear()
	s.logf("logging back in as %s", name)
	if err := c.Login(name, password(name)); err != nil {
		return err
	}
	return c.Expect("Village Square", testclient.DefaultTimeout)
}

func badLogin(s *Step) error {
	c, err := s.connect()
	if err != nil {
		return err
	}
	return s.do(c, "login Nobodyhere Wrong1pass", "Invalid name or password.")
}

func movement(s *Step) error {
	c, err := s.player("Walk")
	if err != nil {
		return err
	}
	if err := s.do(c, "east", "East Road"); err != nil {
		return err
	}
	if err := s.do(c, "e", "Ashwood Clearing"); err != nil {
		return err
	}
	if err := s.do(c, "north", "You can't go that way."); err != nil {
		return err
	}
	if err := s.do(c, "w", "East Road"); err != nil {
		return err
	}
	return s.do(c, "west", "Village Square")
}

func doors(s *Step) error {
	c, err := s.player("Door")
	if err != nil {
		return err
	}
	// Another scenario may have left the door open.
	c.Send("close north")
	c.WaitForAny([]string{"You close", "already closed"}, testclient.DefaultTimeout)
	c.Clear()

	if err := s.do(c, "north", "The oak door is closed."); err != nil {
		return err
	}
	if err := s.do(c, "open north", "You open the oak door."); err != nil {
		return err
	}
	if err := s.do(c, "north", "The Banked Fire"); err != nil {
		return err
	}
	if err := s.do(c, "south", "Village Square"); err != nil {
		return err
	}
	if err := s.do(c, "close n", "You close the oak door."); err != nil {
		return err
	}
	return s.do(c, "down", "The trapdoor is locked.")
}

func say(s *Step) error {
	ann, err := s.player("Talk")
	if err != nil {
		return err
	}
	bo, err := s.player("Hear")
	if err != nil {
		return err
	}
	if err := ann.Expect(bo.Name+" has arrived.", testclient.DefaultTimeout); err != nil {
		return fmt.Errorf("arrival not seen: %w", err)
	}
	if err := s.do(ann, "say hello there", `You say, "hello there"`); err != nil {
		return err
	}
	return bo.Expect(ann.Name+` says, "hello there"`, testclient.DefaultTimeout)
}

func inventory(s *Step) error {
	c, err := s.player("Pack")
	if err != nil {
		return err
	}
	if err := s.do(c, "inventory", "You are carrying:"); err != nil {
		return err
	}
	if err := s.do(c, "drop torch", "You drop the torch."); err != nil {
		return err
	}
	if err := s.do(c, "get torch", "You pick up the torch."); err != nil {
		return err
	}
	return s.do(c, "get well", "You can't take that.")
}

func who(s *Step) error {
	c, err := s.player("Seen")
	if err != nil {
		return err
	}
	return s.do(c, "who", c.Name)
}
