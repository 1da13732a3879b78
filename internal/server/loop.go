// Package server drives the game: it polls the transport, dispatches input
// to commands and runs periodic maintenance.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/lawnchairsociety/hearthmud/internal/command"
	"github.com/lawnchairsociety/hearthmud/internal/message"
	"github.com/lawnchairsociety/hearthmud/internal/session"
	"github.com/lawnchairsociety/hearthmud/internal/tick"
	"github.com/lawnchairsociety/hearthmud/internal/transport"
)

// ErrAlreadyRunning is returned by Start on a running loop.
var ErrAlreadyRunning = errors.New("server: event loop already running")

// ErrStopped is returned by Start once the loop has run or Stop has been
// called. A loop runs at most once.
var ErrStopped = errors.New("server: event loop stopped")

// State is the loop's lifecycle state.
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// Source is the connection transport the loop polls.
type Source interface {
	Poll() []transport.Event
	Close() error
}

// prober is a Source that can check idle connections for peers that
// vanished without closing.
type prober interface {
	Probe(now time.Time) int
}

// Config tunes the loop.
type Config struct {
	PollInterval     time.Duration
	AutosaveInterval time.Duration
	SpawnInterval    time.Duration
	// Welcome is sent to every new connection.
	Welcome string
}

// EventLoop is the single goroutine that owns command dispatch.
type EventLoop struct {
	source  Source
	game    *command.Game
	cfg     Config
	log     *slog.Logger
	ticks   *tick.Scheduler
	spawner *Spawner

	mu       sync.Mutex
	state    State
	started  bool
	stopping chan struct{}
	stopOnce sync.Once
	finished chan struct{}
}

// NewEventLoop wires a loop. Maintenance tasks are registered here and run
// once the loop starts.
func NewEventLoop(source Source, game *command.Game, cfg Config, log *slog.Logger) *EventLoop {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 20 * time.Millisecond
	}
	l := &EventLoop{
		source:  source,
		game:    game,
		cfg:     cfg,
		log:     log,
		ticks:   tick.New(time.Now(), log),
		spawner: NewSpawner(game.World, log),

		stopping: make(chan struct{}),
		finished: make(chan struct{}),
	}
	l.registerMaintenance()
	return l
}

// State reports whether the loop is running.
func (l *EventLoop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Spawner returns the loop's spawner.
func (l *EventLoop) Spawner() *Spawner {
	return l.spawner
}

// Start runs the loop until Stop is called or ctx ends. On the way out it
// closes the transport, waits for maintenance tasks and saves every
// character.
func (l *EventLoop) Start(ctx context.Context) error {
	l.mu.Lock()
	switch {
	case l.state == Running:
		l.mu.Unlock()
		return ErrAlreadyRunning
	case l.started || l.stopRequested():
		l.mu.Unlock()
		return ErrStopped
	}
	l.started, l.state = true, Running
	l.mu.Unlock()

	l.log.Info("event loop started")
	defer func() {
		l.mu.Lock()
		l.state = Stopped
		l.mu.Unlock()
		close(l.finished)
		l.log.Info("event loop stopped")
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-l.stopping:
			cancel()
		case <-ctx.Done():
		}
	}()

	l.run(ctx)
	l.shutdown()
	return nil
}

// Stop ends the loop and waits for it to finish. The transport is closed
// before Stop waits, so nothing is written to a client after Stop is
// called. A loop stopped before Start gets going never runs. Safe to call
// from any goroutine, any number of times.
func (l *EventLoop) Stop() {
	l.mu.Lock()
	l.stopOnce.Do(func() { close(l.stopping) })
	started := l.started
	l.mu.Unlock()

	if err := l.source.Close(); err != nil {
		l.log.Warn("closing transport", "error", err)
	}
	if started {
		<-l.finished
	}
}

func (l *EventLoop) stopRequested() bool {
	select {
	case <-l.stopping:
		return true
	default:
		return false
	}
}

func (l *EventLoop) run(ctx context.Context) {
	idle := time.NewTimer(l.cfg.PollInterval)
	defer idle.Stop()

	for {
		if ctx.Err() != nil {
			return
		}

		events := l.source.Poll()
		for _, ev := range events {
			if ctx.Err() != nil {
				return
			}
			l.handle(ev)
		}
		if ctx.Err() != nil {
			return
		}
		l.ticks.Due(time.Now(), l.game.Sessions.Len() > 0)

		if len(events) == 0 {
			idle.Reset(l.cfg.PollInterval)
			select {
			case <-ctx.Done():
				return
			case <-idle.C:
			}
		}
	}
}

// shutdown closes the transport first so that tasks still in flight cannot
// reach a client, then saves once they are done.
func (l *EventLoop) shutdown() {
	if err := l.source.Close(); err != nil {
		l.log.Warn("closing transport", "error", err)
	}
	l.ticks.Wait()
	saved, failed := l.saveAll()
	l.log.Info("saved characters on shutdown", "saved", saved, "errors", failed)
}

func (l *EventLoop) handle(ev transport.Event) {
	switch ev.Kind {
	case transport.Connected:
		l.connected(ev.Conn)
	case transport.Input:
		if s, ok := l.game.Sessions.Get(ev.Conn.ID()); ok {
			l.dispatch(s, ev.Line)
		}
	case transport.Disconnected:
		l.disconnected(ev.Conn.ID())
	}
}

func (l *EventLoop) connected(conn session.Conn) {
	s := session.New(conn)
	if err := l.game.Sessions.Add(s); err != nil {
		l.log.Error("rejecting connection", "session", conn.ID(), "error", err)
		conn.Close()
		return
	}
	l.log.Info("client connected", "session", s.ID(), "ip", s.RemoteIP())
	l.game.Router.Send(message.ToSession(s, message.Plain(l.cfg.Welcome)))
}

func (l *EventLoop) disconnected(id string) {
	s, ok := l.game.Sessions.Remove(id)
	if !ok {
		return
	}
	l.game.Flood.Forget(id)
	ch := l.game.Sessions.MarkLoggedOut(s)
	if ch == nil {
		l.log.Info("client disconnected", "session", id)
		return
	}
	if err := l.game.Save(ch); err != nil {
		l.log.Error("failed to save on disconnect", "character", ch.Name(), "error", err)
	}
	l.game.Router.Send(message.ToRoom(message.Text("%s vanished.", ch.Name()), ch.RoomID()))
	l.log.Info("client disconnected", "session", id, "character", ch.Name())
}

// dispatch runs one line of input. A panicking handler is reported to the
// session and the loop carries on.
func (l *EventLoop) dispatch(s *session.Session, line string) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("command panicked", "session", s.ID(), "input", line, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			l.game.Router.Send(message.ToSession(s, message.Text("Something went wrong: %v", r)))
		}
	}()

	res, err := l.game.Table.Resolve(line)
	if err == nil {
		if res.Handler == nil {
			l.game.Router.Prompt(s)
			return
		}
		err = l.game.Dispatch(s, res)
	}
	if err != nil {
		l.report(s, line, err)
	}
}

// report turns a dispatch error into a message for s.
func (l *EventLoop) report(s *session.Session, line string, err error) {
	var (
		unknown *command.UnrecognizedError
		missing *command.MissingArgumentsError
	)
	text := "Something went wrong."
	switch {
	case errors.As(err, &unknown):
		text = unknown.Message()
	case errors.As(err, &missing):
		text = missing.Message()
	default:
		if ue, ok := command.IsUserError(err); ok {
			text = ue.Msg
		} else {
			l.log.Error("command failed", "session", s.ID(), "input", line, "error", err)
		}
	}
	l.game.Router.Send(message.ToSession(s, message.Plain(text)))
}
