package command

// Builtins returns every built-in command.
func Builtins() []Handler {
	hs := []Handler{
		lookCommand,
		timeCommand,
		sayCommand,
		whoCommand,
		openCommand,
		closeCommand,
		getCommand,
		dropCommand,
		inventoryCommand,
		loginCommand,
		registerCommand,
		finalizeCommand,
		logoutCommand,
		quitCommand,
		helpCommand,
	}
	return append(hs, movementCommands()...)
}

// NewDefaultTable returns a table holding the built-ins.
func NewDefaultTable() *Table {
	t := NewTable()
	t.MustRegister(Builtins()...)
	return t
}
