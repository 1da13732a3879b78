package message

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/encoding/charmap"
)

const (
	lineEnd      = "\n\r"
	promptPrefix = "\r\n"
	directPrefix = "\n"
	scopePrefix  = "\r"
)

// Encoder turns outbound text into wire bytes.
type Encoder func(string) []byte

// NewEncoder returns the encoder for "utf-8" (or ""), "latin1" or "cp437".
// Runes the charset cannot carry become '?'.
func NewEncoder(name string) (Encoder, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return func(s string) []byte { return []byte(s) }, nil
	case "latin1", "iso-8859-1":
		return charmapEncoder(charmap.ISO8859_1), nil
	case "cp437":
		return charmapEncoder(charmap.CodePage437), nil
	}
	return nil, fmt.Errorf("unknown encoding %q", name)
}

func charmapEncoder(cm *charmap.Charmap) Encoder {
	return func(s string) []byte {
		out := make([]byte, 0, len(s))
		for _, r := range s {
			b, ok := cm.EncodeRune(r)
			if !ok {
				b = '?'
			}
			out = append(out, b)
		}
		return out
	}
}

// Formatter lays out message bodies and prompts.
type Formatter struct {
	Width  int
	Prompt string
}

// Body renders m for delivery under scope: wrapped, aligned, every line
// ended with "\n\r", led by "\n" for direct delivery or "\r" otherwise.
func (f Formatter) Body(m Message, scope Scope) string {
	text := strings.ReplaceAll(m.Text, "\r\n", "\n")
	if f.Width > 0 {
		text = wordwrap.String(text, f.Width)
	}

	lines := strings.Split(text, "\n")
	var b strings.Builder
	if scope == Direct {
		b.WriteString(directPrefix)
	} else {
		b.WriteString(scopePrefix)
	}
	for _, line := range lines {
		line = strings.TrimRight(line, " ")
		if m.Align == AlignCenter && f.Width > 0 {
			if pad := (f.Width - ansi.PrintableRuneWidth(line)) / 2; pad > 0 {
				line = strings.Repeat(" ", pad) + line
			}
		}
		b.WriteString(line)
		b.WriteString(lineEnd)
	}
	return b.String()
}

// PromptText renders the input prompt.
func (f Formatter) PromptText() string {
	return promptPrefix + f.Prompt
}
