package command

import (
	"fmt"
	"strings"
)

var helpCommand = &Command{
	Names:       []string{"help", "?", "commands"},
	Arguments:   []Arg{{Name: "command", Description: "a command to explain"}},
	SummaryText: "List commands, or explain one",
	BeforeLogin: true,
	Fn:          help,
}

func help(ctx *Context) error {
	if len(ctx.Args) > 0 {
		h, ok := ctx.Table.Lookup(ctx.Args[0])
		if !ok {
			return Userf("There is no help for '%s'.", ctx.Args[0])
		}
		ctx.Tell(helpFor(h))
		return nil
	}

	var b strings.Builder
	b.WriteString("Available commands:")
	for _, h := range ctx.Table.Handlers() {
		if !ctx.Session.LoggedIn() && !h.PreLogin() {
			continue
		}
		fmt.Fprintf(&b, "\n  %-24s %s", h.Usage(), h.Summary())
	}
	if !ctx.Session.LoggedIn() {
		b.WriteString("\nLog in or register to see the rest.")
	} else {
		b.WriteString("\nType 'help <command>' for details.")
	}
	ctx.Tell(b.String())
	return nil
}

func helpFor(h Handler) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Usage: %s\n%s", h.Usage(), h.Summary())
	if aliases := h.Aliases(); len(aliases) > 1 {
		fmt.Fprintf(&b, "\nAliases: %s", strings.Join(aliases[1:], ", "))
	}
	for _, a := range h.Args() {
		opt := ""
		if !a.Required {
			opt = " (optional)"
		}
		fmt.Fprintf(&b, "\n  %s%s - %s", a.Name, opt, a.Description)
	}
	return b.String()
}
