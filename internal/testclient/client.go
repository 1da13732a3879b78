// Package testclient is a telnet client for driving a running server from
// tests and the smoke runner.
package testclient

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
)

// DefaultTimeout is how long the account helpers wait for each reply.
const DefaultTimeout = 3 * time.Second

// ErrTimeout is returned by Expect when the text never arrives.
var ErrTimeout = errors.New("testclient: timed out")

// Client is one connection. A background reader collects output as lines;
// text after the last newline, such as the prompt, is kept as a pending
// line.
type Client struct {
	Name string

	conn net.Conn
	done chan struct{}

	mu      sync.Mutex
	lines   []string
	pending string
}

// Dial connects to addr and starts reading.
func Dial(addr string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, DefaultTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	c := &Client{conn: conn, done: make(chan struct{})}
	go c.read()
	return c, nil
}

func (c *Client) read() {
	defer close(c.done)
	buf := make([]byte, 4096)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			c.append(string(buf[:n]))
		}
		if err != nil {
			return
		}
	}
}

func (c *Client) append(chunk string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	parts := strings.Split(c.pending+chunk, "\n")
	c.pending = strings.Trim(parts[len(parts)-1], "\r")
	for _, p := range parts[:len(parts)-1] {
		if line := strings.Trim(p, "\r"); line != "" {
			c.lines = append(c.lines, line)
		}
	}
}

// Done is closed once the server hangs up or Close is called.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Send writes one line of input.
func (c *Client) Send(line string) error {
	c.conn.SetWriteDeadline(time.Now().Add(DefaultTimeout))
	_, err := c.conn.Write([]byte(line + "\r\n"))
	return err
}

// Messages returns every line received and not yet consumed, plus the
// pending partial line if there is one.
func (c *Client) Messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := append([]string(nil), c.lines...)
	if c.pending != "" {
		out = append(out, c.pending)
	}
	return out
}

// Clear discards everything received so far.
func (c *Client) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines, c.pending = nil, ""
}

// Has reports whether any unconsumed line contains text.
func (c *Client) Has(text string) bool {
	return lo.SomeBy(c.Messages(), func(m string) bool { return strings.Contains(m, text) })
}

// WaitFor polls until some line contains text.
func (c *Client) WaitFor(text string, timeout time.Duration) bool {
	_, ok := c.WaitForAny([]string{text}, timeout)
	return ok
}

// WaitForAny polls until some line contains one of texts and returns it.
func (c *Client) WaitForAny(texts []string, timeout time.Duration) (string, bool) {
	deadline := time.Now().Add(timeout)
	for {
		for _, t := range texts {
			if c.Has(t) {
				return t, true
			}
		}
		if time.Now().After(deadline) {
			return "", false
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// Expect waits for a line containing text and consumes every line up to
// and including it, so consecutive calls check arrival order.
func (c *Client) Expect(text string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if c.consume(text) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w waiting for %q, got %q", ErrTimeout, text, c.Messages())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func (c *Client) consume(text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, i, ok := lo.FindIndexOf(c.lines, func(l string) bool { return strings.Contains(l, text) }); ok {
		c.lines = c.lines[i+1:]
		return true
	}
	if strings.Contains(c.pending, text) {
		c.lines, c.pending = nil, ""
		return true
	}
	return false
}

// Register creates and finalizes a new character and waits until it is in
// the world.
func (c *Client) Register(name, password string) error {
	if err := c.Send("register " + name + " " + password); err != nil {
		return err
	}
	if err := c.Expect("is ready", DefaultTimeout); err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}
	if err := c.Send("finalize"); err != nil {
		return err
	}
	if err := c.Expect("Welcome, ", DefaultTimeout); err != nil {
		return fmt.Errorf("finalize %s: %w", name, err)
	}
	c.Name = name
	return nil
}

// Login enters the world as an existing character.
func (c *Client) Login(name, password string) error {
	if err := c.Send("login " + name + " " + password); err != nil {
		return err
	}
	if err := c.Expect("Welcome back, ", DefaultTimeout); err != nil {
		return fmt.Errorf("login %s: %w", name, err)
	}
	c.Name = name
	return nil
}

// Close hangs up and waits for the reader to stop.
func (c *Client) Close() error {
	err := c.conn.Close()
	<-c.done
	return err
}

// Dump prints every unconsumed line, for debugging.
func (c *Client) Dump() {
	fmt.Printf("\n=== Messages for %s ===\n", c.Name)
	for i, m := range c.Messages() {
		fmt.Printf("[%d] %s\n", i, m)
	}
	fmt.Println("======================")
}
