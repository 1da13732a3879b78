package transport

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/hearthmud/internal/telnet"
)

var (
	// ErrClosed is returned by writes after the transport or the
	// connection has shut down.
	ErrClosed = errors.New("transport: connection closed")
)

// wire abstracts the byte stream under a Conn for both telnet and WebSocket.
type wire interface {
	// read blocks until data arrives. Each call may return a partial line.
	read() ([]byte, error)
	write(p []byte, deadline time.Time) error
	// probe sends something harmless that fails on a dead peer.
	probe(deadline time.Time) error
	close() error
	remoteAddr() string
}

// Conn is one accepted client connection.
type Conn struct {
	id   string
	ip   string
	wire wire
	slot *Slot

	writeTimeout time.Duration
	shutdown     *atomic.Bool

	raw  chan []byte
	done chan struct{}

	writeMu   sync.Mutex
	failed    atomic.Bool
	closeOnce sync.Once

	// Touched only by Poll.
	decoder    *telnet.Decoder
	connectSeq uint64

	// Touched only by Probe.
	lastProbe time.Time
}

// ID is the connection's unique identifier.
func (c *Conn) ID() string { return c.id }

// RemoteIP is the client's address without port.
func (c *Conn) RemoteIP() string { return c.ip }

// Write sends all of p or nothing. A failure marks the connection so the
// next Poll reaps it; callers may ignore the error.
func (c *Conn) Write(p []byte) error {
	if c.shutdown.Load() || c.failed.Load() {
		return ErrClosed
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.shutdown.Load() {
		return ErrClosed
	}
	if err := c.wire.write(p, time.Now().Add(c.writeTimeout)); err != nil {
		c.failed.Store(true)
		return err
	}
	return nil
}

// Close hangs up. The next Poll reports the disconnect.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.failed.Store(true)
		err = c.wire.close()
	})
	return err
}

// Failed reports whether a write, probe or read has failed.
func (c *Conn) Failed() bool {
	return c.failed.Load()
}

func (c *Conn) probe() {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.shutdown.Load() {
		return
	}
	if err := c.wire.probe(time.Now().Add(c.writeTimeout)); err != nil {
		c.failed.Store(true)
	}
}

// readLoop moves raw bytes into c.raw until the wire fails or the transport
// shuts down. It closes c.done after its last send.
func (c *Conn) readLoop(closing <-chan struct{}) {
	defer close(c.done)
	for {
		data, err := c.wire.read()
		if err != nil {
			return
		}
		select {
		case c.raw <- data:
		case <-closing:
			return
		}
	}
}

type tcpWire struct {
	conn net.Conn
	buf  []byte
}

func newTCPWire(conn net.Conn) *tcpWire {
	return &tcpWire{conn: conn, buf: make([]byte, 4096)}
}

func (w *tcpWire) read() ([]byte, error) {
	n, err := w.conn.Read(w.buf)
	if n > 0 {
		return append([]byte(nil), w.buf[:n]...), nil
	}
	return nil, err
}

func (w *tcpWire) write(p []byte, deadline time.Time) error {
	if err := w.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	_, err := w.conn.Write(p)
	return err
}

func (w *tcpWire) probe(deadline time.Time) error {
	return w.write(telnet.NOPProbe, deadline)
}

func (w *tcpWire) close() error       { return w.conn.Close() }
func (w *tcpWire) remoteAddr() string { return w.conn.RemoteAddr().String() }

// wsWire carries one line per text frame.
type wsWire struct {
	conn *websocket.Conn
}

func (w *wsWire) read() ([]byte, error) {
	_, msg, err := w.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	if n := len(msg); n == 0 || (msg[n-1] != '\n' && msg[n-1] != '\r') {
		msg = append(msg, '\n')
	}
	return msg, nil
}

func (w *wsWire) write(p []byte, deadline time.Time) error {
	if err := w.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return w.conn.WriteMessage(websocket.TextMessage, p)
}

func (w *wsWire) probe(deadline time.Time) error {
	return w.conn.WriteControl(websocket.PingMessage, nil, deadline)
}

func (w *wsWire) close() error       { return w.conn.Close() }
func (w *wsWire) remoteAddr() string { return w.conn.RemoteAddr().String() }
