// Package transport accepts telnet and WebSocket clients and turns their
// byte streams into connect, disconnect and input events for a polling
// event loop. Nothing in Poll or Write blocks on a peer.
package transport

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/lawnchairsociety/hearthmud/internal/config"
	"github.com/lawnchairsociety/hearthmud/internal/telnet"
)

// EventKind says what happened to a connection.
type EventKind int

const (
	Connected EventKind = iota
	Disconnected
	Input
)

func (k EventKind) String() string {
	switch k {
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	case Input:
		return "input"
	}
	return "unknown"
}

// Event is one result of Poll. Line is set only for Input.
type Event struct {
	Kind EventKind
	Conn *Conn
	Line string
}

const (
	incomingBuffer = 64
	rawBuffer      = 32
	minLiveness    = 5 * time.Second
)

// RejectMessage is written to connections refused by the limiter.
const RejectMessage = "Too many connections. Please try again later.\r\n"

// Transport owns every listener and connection.
type Transport struct {
	log     *slog.Logger
	cfg     config.ServerSection
	limiter *ConnLimiter

	incoming chan *Conn
	closing  chan struct{}
	shutdown atomic.Bool
	seq      atomic.Uint64

	mu        sync.Mutex
	conns     map[string]*Conn
	listeners []net.Listener
	servers   []*http.Server

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New creates a transport with no listeners.
func New(cfg config.ServerSection, limits config.ConnectionsConfig, log *slog.Logger) *Transport {
	if cfg.LivenessInterval < minLiveness {
		cfg.LivenessInterval = minLiveness
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return &Transport{
		log:      log,
		cfg:      cfg,
		limiter:  NewConnLimiter(limits),
		incoming: make(chan *Conn, incomingBuffer),
		closing:  make(chan struct{}),
		conns:    make(map[string]*Conn),
	}
}

// Limiter exposes the connection limiter.
func (t *Transport) Limiter() *ConnLimiter {
	return t.limiter
}

// ListenTCP starts accepting telnet clients on addr and returns the bound
// address.
func (t *Transport) ListenTCP(addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.shutdown.Load() {
		ln.Close()
		return nil, ErrClosed
	}
	t.listeners = append(t.listeners, ln)
	t.wg.Add(1)
	go t.acceptLoop(ln)

	t.log.Info("Telnet listening", "address", ln.Addr().String())
	return ln.Addr(), nil
}

func (t *Transport) acceptLoop(ln net.Listener) {
	defer t.wg.Done()
	for {
		nc, err := ln.Accept()
		if err != nil {
			if t.shutdown.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			t.log.Error("Error accepting connection", "error", err)
			continue
		}

		remote := nc.RemoteAddr().String()
		slot, err := t.limiter.Admit(remoteHost(remote))
		if err != nil {
			t.log.Warn("Connection rejected", "remote_addr", remote, "reason", err)
			nc.SetWriteDeadline(time.Now().Add(t.cfg.WriteTimeout))
			nc.Write([]byte(RejectMessage))
			nc.Close()
			continue
		}
		t.admit(newTCPWire(nc), slot)
	}
}

// admit hands slot to a new Conn over w. From here on the Conn owns the
// slot.
func (t *Transport) admit(w wire, slot *Slot) {
	c := &Conn{
		id:           uuid.NewString(),
		ip:           slot.IP(),
		wire:         w,
		slot:         slot,
		writeTimeout: t.cfg.WriteTimeout,
		shutdown:     &t.shutdown,
		raw:          make(chan []byte, rawBuffer),
		done:         make(chan struct{}),
		decoder:      telnet.NewDecoder(t.cfg.MaxLineLength),
		connectSeq:   t.seq.Add(1),
		lastProbe:    time.Now(),
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.shutdown.Load() {
		c.Close()
		c.slot.Release()
		return
	}
	select {
	case t.incoming <- c:
	default:
		t.log.Warn("Connection rejected - accept queue full", "remote_addr", w.remoteAddr())
		c.Close()
		c.slot.Release()
		return
	}

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		c.readLoop(t.closing)
	}()
	t.log.Debug("Client connected", "conn", c.id, "remote_addr", w.remoteAddr())
}

// Poll performs one non-blocking sweep. Events for one connection keep their
// order: Connected, then Input lines, then Disconnected.
func (t *Transport) Poll() []Event {
	if t.shutdown.Load() {
		return nil
	}
	var events []Event

	for accepting := true; accepting; {
		select {
		case c := <-t.incoming:
			t.mu.Lock()
			t.conns[c.id] = c
			t.mu.Unlock()
			events = append(events, Event{Kind: Connected, Conn: c})
		default:
			accepting = false
		}
	}

	for _, c := range t.snapshot() {
		events = t.drain(c, events)

		dead := c.Failed()
		select {
		case <-c.done:
			events = t.drain(c, events)
			dead = true
		default:
		}

		if dead {
			t.reap(c)
			events = append(events, Event{Kind: Disconnected, Conn: c})
		}
	}
	return events
}

// Probe writes a harmless probe to every connection not probed within the
// liveness interval. A peer that vanished without closing fails the write
// and is reaped by the next Poll. It returns how many were probed.
func (t *Transport) Probe(now time.Time) int {
	if t.shutdown.Load() {
		return 0
	}
	probed := 0
	for _, c := range t.snapshot() {
		if c.Failed() || now.Sub(c.lastProbe) < t.cfg.LivenessInterval {
			continue
		}
		c.lastProbe = now
		c.probe()
		probed++
	}
	return probed
}

func (t *Transport) drain(c *Conn, events []Event) []Event {
	for {
		select {
		case data := <-c.raw:
			for _, line := range c.decoder.Feed(data) {
				events = append(events, Event{Kind: Input, Conn: c, Line: line})
			}
		default:
			return events
		}
	}
}

func (t *Transport) reap(c *Conn) {
	t.mu.Lock()
	delete(t.conns, c.id)
	t.mu.Unlock()
	c.Close()
	c.slot.Release()
	t.log.Debug("Client disconnected", "conn", c.id)
}

// snapshot returns live connections in connect order.
func (t *Transport) snapshot() []*Conn {
	t.mu.Lock()
	out := make([]*Conn, 0, len(t.conns))
	for _, c := range t.conns {
		out = append(out, c)
	}
	t.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].connectSeq < out[j].connectSeq })
	return out
}

// Len returns the number of live connections.
func (t *Transport) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.conns)
}

// Close stops every listener and hangs up every connection. No write
// reaches a socket once Close has begun. Safe to call from any goroutine
// and more than once.
func (t *Transport) Close() error {
	t.closeOnce.Do(func() {
		t.mu.Lock()
		t.shutdown.Store(true)
		close(t.closing)
		for _, ln := range t.listeners {
			ln.Close()
		}
		for _, srv := range t.servers {
			srv.Close()
		}
		conns := make([]*Conn, 0, len(t.conns))
		for _, c := range t.conns {
			conns = append(conns, c)
		}
		t.conns = make(map[string]*Conn)
		t.mu.Unlock()

		for _, c := range conns {
			c.Close()
			c.slot.Release()
		}
		for pending := true; pending; {
			select {
			case c := <-t.incoming:
				c.Close()
				c.slot.Release()
			default:
				pending = false
			}
		}
	})
	t.wg.Wait()
	return nil
}
