package telnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func iac(bs ...Command) []byte {
	out := make([]byte, len(bs))
	for i, b := range bs {
		out[i] = byte(b)
	}
	return out
}

func TestDecoderFeed(t *testing.T) {
	tests := map[string]struct {
		input   []byte
		exp     []string
		pending string
	}{
		"plain lf": {
			input: []byte("look\n"),
			exp:   []string{"look"},
		},
		"crlf is one line": {
			input: []byte("north\r\nsouth\r\n"),
			exp:   []string{"north", "south"},
		},
		"cr nul is one line": {
			input: []byte("say hi\r\x00"),
			exp:   []string{"say hi"},
		},
		"bare cr ends line": {
			input: []byte("a\rb\r"),
			exp:   []string{"a", "b"},
		},
		"empty line": {
			input: []byte("\r\n"),
			exp:   []string{""},
		},
		"unterminated stays pending": {
			input:   []byte("loo"),
			pending: "loo",
		},
		"will wont do dont stripped": {
			input: append(append(iac(IAC, WILL, 1, IAC, WONT, 3, IAC, DO, 24, IAC, DONT, 31), "look"...), '\n'),
			exp:   []string{"look"},
		},
		"subnegotiation stripped": {
			input: append(append([]byte("lo"), iac(IAC, SB, 24, 0, 'x', 't', 'e', 'r', 'm', IAC, SE)...), "ok\n"...),
			exp:   []string{"look"},
		},
		"iac iac inside subnegotiation": {
			input: append(iac(IAC, SB, 1, IAC, IAC, 5, IAC, SE), "x\n"...),
			exp:   []string{"x"},
		},
		"nop and literal 255 dropped": {
			input: append(iac(IAC, NOP, IAC, IAC), "hi\n"...),
			exp:   []string{"hi"},
		},
		"backspace trims": {
			input: []byte("lookk\x08\n"),
			exp:   []string{"look"},
		},
		"delete trims": {
			input: []byte("ab\x7f\x7f\x7fc\n"),
			exp:   []string{"c"},
		},
		"backspace trims whole rune": {
			input: []byte("caf\xc3\xa9\x08e\n"),
			exp:   []string{"cafe"},
		},
		"control bytes dropped and tab becomes space": {
			input: []byte("say\ta\x07b\n"),
			exp:   []string{"say ab"},
		},
		"utf8 preserved": {
			input: []byte("say h\xc3\xa9llo\n"),
			exp:   []string{"say héllo"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			d := NewDecoder(0)
			got := d.Feed(tt.input)
			assert.Equal(t, tt.exp, got)
			assert.Equal(t, tt.pending, d.Pending())
		})
	}
}

func TestDecoderResumesAcrossChunks(t *testing.T) {
	stream := append(append([]byte("lo"), iac(IAC, SB, 31, 0, 80, 0, 24, IAC, SE, IAC, DO, 1)...), "ok\r\nn\r\n"...)

	// Every split point must produce the same lines.
	for split := 0; split <= len(stream); split++ {
		d := NewDecoder(0)
		var got []string
		got = append(got, d.Feed(stream[:split])...)
		got = append(got, d.Feed(stream[split:])...)
		assert.Equal(t, []string{"look", "n"}, got, "split at %d", split)
	}
}

func TestDecoderByteAtATime(t *testing.T) {
	d := NewDecoder(0)
	var got []string
	for _, b := range append(iac(IAC, WILL, 3), "say hi\r\n"...) {
		got = append(got, d.Feed([]byte{b})...)
	}
	assert.Equal(t, []string{"say hi"}, got)
}

func TestDecoderMaxLine(t *testing.T) {
	d := NewDecoder(4)
	assert.Equal(t, []string{"abcd"}, d.Feed([]byte("abcdefgh\n")))
	assert.Equal(t, []string{"xy"}, d.Feed([]byte("xy\n")))
}
