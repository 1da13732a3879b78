package transport

import (
	"errors"
	"net"
	"sync"

	"github.com/lawnchairsociety/hearthmud/internal/config"
)

// Admission refusals.
var (
	ErrServerFull  = errors.New("transport: server connection limit reached")
	ErrAddressFull = errors.New("transport: too many connections from this address")
)

// ConnLimiter hands out connection slots under a per-address cap and a
// server-wide cap. Zero caps are unlimited.
type ConnLimiter struct {
	limits config.ConnectionsConfig

	mu     sync.Mutex
	byAddr map[string]int
	total  int
}

// NewConnLimiter returns a limiter enforcing limits.
func NewConnLimiter(limits config.ConnectionsConfig) *ConnLimiter {
	return &ConnLimiter{limits: limits, byAddr: make(map[string]int)}
}

// Slot is one connection's place under the limits. Every admitted Conn owns
// its slot and gives it back when the transport reaps it.
type Slot struct {
	limiter *ConnLimiter
	ip      string
	once    sync.Once
}

// Admit reserves a slot for ip or says which cap refused it.
func (l *ConnLimiter) Admit(ip string) (*Slot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch {
	case l.limits.MaxTotal > 0 && l.total >= l.limits.MaxTotal:
		return nil, ErrServerFull
	case l.limits.MaxPerIP > 0 && l.byAddr[ip] >= l.limits.MaxPerIP:
		return nil, ErrAddressFull
	}
	l.byAddr[ip]++
	l.total++
	return &Slot{limiter: l, ip: ip}, nil
}

// IP is the address the slot was admitted for.
func (s *Slot) IP() string { return s.ip }

// Release gives the slot back. Only the first call counts.
func (s *Slot) Release() {
	if s == nil {
		return
	}
	s.once.Do(func() { s.limiter.free(s.ip) })
}

func (l *ConnLimiter) free(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n := l.byAddr[ip] - 1; n > 0 {
		l.byAddr[ip] = n
	} else {
		delete(l.byAddr, ip)
	}
	l.total--
}

// Held reports the slots in use in total and for ip.
func (l *ConnLimiter) Held(ip string) (total, fromIP int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total, l.byAddr[ip]
}

// remoteHost drops the port from a socket address.
func remoteHost(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
