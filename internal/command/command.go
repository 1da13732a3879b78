// Package command resolves player input against a table of handlers and
// implements the built-in commands.
package command

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

var (
	// ErrNoAliases is returned when registering a handler with no names.
	ErrNoAliases = errors.New("command: handler has no aliases")
	// ErrDuplicateAlias is returned when an alias is already taken.
	ErrDuplicateAlias = errors.New("command: duplicate alias")
)

// Arg describes one positional argument.
type Arg struct {
	Name        string
	Description string
	Required    bool
}

// Handler is one command.
type Handler interface {
	// Aliases are matched case-insensitively; the first is the canonical name.
	Aliases() []string
	Args() []Arg
	Usage() string
	// Summary is the one-line help text.
	Summary() string
	// PreLogin reports whether sessions without a character may run it.
	PreLogin() bool
	Run(ctx *Context) error
}

// RunFunc is the body of a Command.
type RunFunc func(ctx *Context) error

// Command is the Handler used for every built-in.
type Command struct {
	Names       []string
	Arguments   []Arg
	UsageText   string
	SummaryText string
	BeforeLogin bool
	Fn          RunFunc
}

func (c *Command) Aliases() []string      { return c.Names }
func (c *Command) Args() []Arg            { return c.Arguments }
func (c *Command) Summary() string        { return c.SummaryText }
func (c *Command) PreLogin() bool         { return c.BeforeLogin }
func (c *Command) Run(ctx *Context) error { return c.Fn(ctx) }

// Usage returns UsageText, or one built from the name and arguments.
func (c *Command) Usage() string {
	if c.UsageText != "" {
		return c.UsageText
	}
	parts := []string{c.Names[0]}
	for _, a := range c.Arguments {
		if a.Required {
			parts = append(parts, "<"+a.Name+">")
		} else {
			parts = append(parts, "["+a.Name+"]")
		}
	}
	return strings.Join(parts, " ")
}

// Resolution is a parsed input line. Handler is nil for blank input.
type Resolution struct {
	Handler Handler
	Alias   string
	Args    []string
}

// UnrecognizedError means the first word matched no alias.
type UnrecognizedError struct {
	Command string
}

func (e *UnrecognizedError) Error() string {
	return fmt.Sprintf("unrecognized command %q", e.Command)
}

// Message is the text shown to the player.
func (e *UnrecognizedError) Message() string {
	return fmt.Sprintf("Unknown command: %s. Type 'help' for available commands.", e.Command)
}

// MissingArgumentsError lists every required argument of a handler that was
// called with too few.
type MissingArgumentsError struct {
	Handler Handler
	Args    []Arg
}

func (e *MissingArgumentsError) Error() string {
	names := lo.Map(e.Args, func(a Arg, _ int) string { return a.Name })
	return fmt.Sprintf("%s: missing arguments: %s", e.Handler.Aliases()[0], strings.Join(names, ", "))
}

// Message is the text shown to the player.
func (e *MissingArgumentsError) Message() string {
	var b strings.Builder
	b.WriteString("Missing arguments:")
	for _, a := range e.Args {
		fmt.Fprintf(&b, "\n  %s - %s", a.Name, a.Description)
	}
	fmt.Fprintf(&b, "\nUsage: %s", e.Handler.Usage())
	return b.String()
}

// Table maps aliases to handlers.
type Table struct {
	handlers []Handler
	byAlias  map[string]Handler
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{byAlias: make(map[string]Handler)}
}

// Register adds h under all of its aliases. Nothing is registered on error.
func (t *Table) Register(h Handler) error {
	aliases := lo.Map(h.Aliases(), func(a string, _ int) string { return strings.ToLower(strings.TrimSpace(a)) })
	if len(aliases) == 0 || lo.Contains(aliases, "") {
		return ErrNoAliases
	}
	if dup := lo.FindDuplicates(aliases); len(dup) > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateAlias, dup[0])
	}
	for _, a := range aliases {
		if _, ok := t.byAlias[a]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateAlias, a)
		}
	}
	for _, a := range aliases {
		t.byAlias[a] = h
	}
	t.handlers = append(t.handlers, h)
	return nil
}

// MustRegister registers every handler and panics on the first error.
func (t *Table) MustRegister(hs ...Handler) {
	for _, h := range hs {
		if err := t.Register(h); err != nil {
			panic(err)
		}
	}
}

// Lookup finds a handler by alias in any case.
func (t *Table) Lookup(alias string) (Handler, bool) {
	h, ok := t.byAlias[strings.ToLower(strings.TrimSpace(alias))]
	return h, ok
}

// Handlers returns the registered handlers sorted by canonical name.
func (t *Table) Handlers() []Handler {
	out := append([]Handler(nil), t.handlers...)
	sort.Slice(out, func(i, j int) bool { return out[i].Aliases()[0] < out[j].Aliases()[0] })
	return out
}

// Resolve splits line into a command word and whitespace-separated
// arguments and finds the handler. Blank input yields a zero Resolution.
func (t *Table) Resolve(line string) (Resolution, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Resolution{}, nil
	}

	h, ok := t.Lookup(fields[0])
	if !ok {
		return Resolution{}, &UnrecognizedError{Command: fields[0]}
	}

	args := fields[1:]
	required := lo.Filter(h.Args(), func(a Arg, _ int) bool { return a.Required })
	if len(args) < len(required) {
		return Resolution{}, &MissingArgumentsError{Handler: h, Args: required}
	}
	return Resolution{Handler: h, Alias: strings.ToLower(fields[0]), Args: args}, nil
}
