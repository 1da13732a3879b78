package chat

import (
	"sync"
	"time"
)

// Flood refusals.
const (
	ReasonTooFast = "You're sending messages too quickly. Please slow down."
	ReasonRepeat  = "Please don't repeat the same message."
)

// FloodLimiter tracks recent messages per speaker.
type FloodLimiter struct {
	mu       sync.Mutex
	cfg      FloodConfig
	speakers map[string]*speaker
	now      func() time.Time
}

type speaker struct {
	times []time.Time
	last  map[string]time.Time
}

// NewFloodLimiter returns a limiter, or nil when cfg is disabled. A nil
// limiter allows everything.
func NewFloodLimiter(cfg FloodConfig) *FloodLimiter {
	if !cfg.Enabled {
		return nil
	}
	if cfg.MaxMessages <= 0 {
		cfg.MaxMessages = 5
	}
	if cfg.Window <= 0 {
		cfg.Window = 10 * time.Second
	}
	return &FloodLimiter{
		cfg:      cfg,
		speakers: make(map[string]*speaker),
		now:      time.Now,
	}
}

// Allow records msg from id if it is allowed. Otherwise it returns the
// reason and how long to wait.
func (l *FloodLimiter) Allow(id, msg string) (ok bool, reason string, wait time.Duration) {
	if l == nil {
		return true, "", 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	sp := l.speakers[id]
	if sp == nil {
		sp = &speaker{last: make(map[string]time.Time)}
		l.speakers[id] = sp
	}
	l.expire(sp, now)

	if at, seen := sp.last[msg]; seen {
		return false, ReasonRepeat, at.Add(l.cfg.RepeatCooldown).Sub(now)
	}
	if len(sp.times) >= l.cfg.MaxMessages {
		return false, ReasonTooFast, sp.times[0].Add(l.cfg.Window).Sub(now)
	}

	sp.times = append(sp.times, now)
	if l.cfg.RepeatCooldown > 0 {
		sp.last[msg] = now
	}
	return true, "", 0
}

func (l *FloodLimiter) expire(sp *speaker, now time.Time) {
	cutoff := now.Add(-l.cfg.Window)
	kept := sp.times[:0]
	for _, t := range sp.times {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	sp.times = kept

	repeatCutoff := now.Add(-l.cfg.RepeatCooldown)
	for msg, t := range sp.last {
		if !t.After(repeatCutoff) {
			delete(sp.last, msg)
		}
	}
}

// Forget drops id's history.
func (l *FloodLimiter) Forget(id string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.speakers, id)
}

// Cleanup drops speakers with nothing left to remember and returns how
// many were removed.
func (l *FloodLimiter) Cleanup() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for id, sp := range l.speakers {
		l.expire(sp, now)
		if len(sp.times) == 0 && len(sp.last) == 0 {
			delete(l.speakers, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked speakers.
func (l *FloodLimiter) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.speakers)
}
