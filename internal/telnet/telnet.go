// Package telnet strips Telnet negotiation from an inbound byte stream and
// assembles the remaining printable text into lines.
package telnet

import (
	"strings"
	"unicode/utf8"
)

// Command is a Telnet command byte (RFC 854).
type Command byte

const (
	SE   Command = 240
	NOP  Command = 241
	SB   Command = 250
	WILL Command = 251
	WONT Command = 252
	DO   Command = 253
	DONT Command = 254
	IAC  Command = 255
)

const (
	backspace = 0x08
	del       = 0x7f
	cr        = '\r'
	lf        = '\n'
	nul       = 0x00
	tab       = '\t'
)

// NOPProbe is a harmless two-byte sequence used to test a connection.
var NOPProbe = []byte{byte(IAC), byte(NOP)}

type state int

const (
	stateData state = iota
	stateIAC
	stateOption
	stateSub
	stateSubIAC
	stateCR
)

// DefaultMaxLine bounds a single input line.
const DefaultMaxLine = 1024

// Decoder is a resumable state machine; negotiation sequences may be split
// across any number of Feed calls. Not safe for concurrent use.
type Decoder struct {
	state   state
	line    []byte
	maxLine int
}

// NewDecoder returns a Decoder dropping characters beyond maxLine bytes.
func NewDecoder(maxLine int) *Decoder {
	if maxLine <= 0 {
		maxLine = DefaultMaxLine
	}
	return &Decoder{maxLine: maxLine}
}

// Feed consumes raw bytes and returns every line completed by them.
// CR, LF, CR LF and CR NUL each end one line.
func (d *Decoder) Feed(p []byte) []string {
	var lines []string
	for _, b := range p {
		switch d.state {
		case stateCR:
			d.state = stateData
			if b == lf || b == nul {
				continue
			}
			lines = d.data(b, lines)

		case stateData:
			lines = d.data(b, lines)

		case stateIAC:
			switch Command(b) {
			case WILL, WONT, DO, DONT:
				d.state = stateOption
			case SB:
				d.state = stateSub
			default:
				// IAC IAC (literal 0xFF) and bare commands carry no text.
				d.state = stateData
			}

		case stateOption:
			d.state = stateData

		case stateSub:
			if Command(b) == IAC {
				d.state = stateSubIAC
			}

		case stateSubIAC:
			if Command(b) == SE {
				d.state = stateData
			} else {
				d.state = stateSub
			}
		}
	}
	return lines
}

func (d *Decoder) data(b byte, lines []string) []string {
	switch {
	case Command(b) == IAC:
		d.state = stateIAC
	case b == cr:
		d.state = stateCR
		lines = append(lines, d.flush())
	case b == lf:
		lines = append(lines, d.flush())
	case b == backspace || b == del:
		d.trim()
	case b == tab:
		d.push(' ')
	case b < 0x20:
	default:
		d.push(b)
	}
	return lines
}

func (d *Decoder) push(b byte) {
	if len(d.line) < d.maxLine {
		d.line = append(d.line, b)
	}
}

// trim removes the last rune, not just the last byte.
func (d *Decoder) trim() {
	if len(d.line) == 0 {
		return
	}
	_, size := utf8.DecodeLastRune(d.line)
	d.line = d.line[:len(d.line)-size]
}

func (d *Decoder) flush() string {
	s := strings.ToValidUTF8(string(d.line), "")
	d.line = d.line[:0]
	return s
}

// Pending returns the unterminated input buffered so far.
func (d *Decoder) Pending() string {
	return string(d.line)
}
