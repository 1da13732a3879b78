// Package smoke holds end-to-end scenarios run against a live server with
// the shipped world loaded.
package smoke

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/lawnchairsociety/hearthmud/internal/testclient"
)

// Options tune a run.
type Options struct {
	// Verbose prints each step as it runs.
	Verbose bool
	// Log receives step output. Nil means stdout.
	Log io.Writer
}

func (o Options) log() io.Writer {
	if o.Log == nil {
		return os.Stdout
	}
	return o.Log
}

// Result is one scenario's outcome.
type Result struct {
	Name    string
	Passed  bool
	Message string
}

// Scenario drives one or more clients against addr.
type Scenario struct {
	Name string
	Run  func(s *Step) error
}

// Step is the per-scenario helper: it names players and opens clients that
// are closed when the scenario ends.
type Step struct {
	scenario string
	addr     string
	opts     Options
	clients  []*testclient.Client
}

var (
	counter atomic.Uint64
	// runOffset keeps names from colliding with earlier runs against the
	// same database.
	runOffset = uint64(time.Now().UnixNano() % 1e9)
)

// uniqueName appends a letter suffix, since names may only hold letters.
func uniqueName(base string) string {
	n := counter.Add(1) + runOffset
	suffix := ""
	for n > 0 {
		n--
		suffix = string(rune('a'+n%26)) + suffix
		n /= 26
	}
	return base + suffix
}

func password(name string) string {
	return name + "Pass123"
}

func (s *Step) logf(format string, args ...any) {
	if s.opts.Verbose {
		fmt.Fprintf(s.opts.log(), "  [%s] %s\n", s.scenario, fmt.Sprintf(format, args...))
	}
}

// connect opens a client and waits for the banner.
func (s *Step) connect() (*testclient.Client, error) {
	c, err := testclient.Dial(s.addr)
	if err != nil {
		return nil, err
	}
	s.clients = append(s.clients, c)
	if !c.WaitFor("Welcome", testclient.DefaultTimeout) {
		return nil, fmt.Errorf("no welcome banner, got %q", c.Messages())
	}
	c.Clear()
	return c, nil
}

// player connects and registers a fresh character.
func (s *Step) player(base string) (*testclient.Client, error) {
	c, err := s.connect()
	if err != nil {
		return nil, err
	}
	name := uniqueName(base)
	s.logf("registering %s", name)
	if err := c.Register(name, password(name)); err != nil {
		return nil, err
	}
	c.Clear()
	return c, nil
}

// do sends line and waits for want.
func (s *Step) do(c *testclient.Client, line, want string) error {
	s.logf("%s> %s", c.Name, line)
	if err := c.Send(line); err != nil {
		return err
	}
	return c.Expect(want, testclient.DefaultTimeout)
}

func (s *Step) close() {
	for _, c := range s.clients {
		c.Close()
	}
}

// RunAll runs every scenario in order.
func RunAll(addr string, opts Options) []Result {
	results := make([]Result, 0, len(Scenarios))
	for _, sc := range Scenarios {
		results = append(results, Run(addr, sc, opts))
	}
	return results
}

// Run runs one scenario.
func Run(addr string, sc Scenario, opts Options) Result {
	s := &Step{scenario: sc.Name, addr: addr, opts: opts}
	defer s.close()

	start := time.Now()
	if err := sc.Run(s); err != nil {
		return Result{Name: sc.Name, Message: err.Error()}
	}
	return Result{Name: sc.Name, Passed: true, Message: fmt.Sprintf("ok in %s", time.Since(start).Round(time.Millisecond))}
}

// PrintResults writes a summary and reports whether everything passed.
func PrintResults(results []Result) bool {
	passed := 0
	for _, r := range results {
		status := "PASS"
		if r.Passed {
			passed++
		} else {
			status = "FAIL"
		}
		fmt.Printf("[%s] %s: %s\n", status, r.Name, r.Message)
	}
	fmt.Printf("\n%d/%d scenarios passed\n", passed, len(results))
	return passed == len(results)
}
