package server

import (
	"time"

	"github.com/lawnchairsociety/hearthmud/internal/message"
)

func (l *EventLoop) registerMaintenance() {
	if p, ok := l.source.(prober); ok {
		l.ticks.EverySecond("liveness", func() {
			if n := p.Probe(time.Now()); n > 0 {
				l.log.Debug("probed idle connections", "count", n)
			}
		})
	}
	l.ticks.EveryMinute("autosave", everyMinutes(l.cfg.AutosaveInterval, func() {
		saved, failed := l.saveAll()
		l.log.Debug("auto-save completed", "saved", saved, "errors", failed)
	}))
	l.ticks.EveryMinute("spawns", everyMinutes(l.cfg.SpawnInterval, func() {
		l.spawner.Replenish()
	}))
	if l.game.Clock != nil {
		l.ticks.EveryMinute("clock", l.advanceClock)
	}
	if l.game.Limiter != nil {
		l.ticks.EveryMinute("login-limiter", func() {
			if n := l.game.Limiter.Cleanup(); n > 0 {
				l.log.Debug("expired login lockouts", "removed", n)
			}
		})
	}
	if l.game.Flood != nil {
		l.ticks.EveryMinute("chat-flood", func() {
			l.game.Flood.Cleanup()
		})
	}
}

// everyMinutes wraps a per-minute task so it only runs once per interval.
// Tasks never overlap, so the counter needs no lock.
func everyMinutes(interval time.Duration, fn func()) func() {
	n := int(interval / time.Minute)
	if n < 1 {
		n = 1
	}
	count := 0
	return func() {
		count++
		if count < n {
			return
		}
		count = 0
		fn()
	}
}

// saveAll writes every logged-in character to the store.
func (l *EventLoop) saveAll() (saved, failed int) {
	for _, s := range l.game.Sessions.LoggedIn() {
		ch := s.Character()
		if ch == nil {
			continue
		}
		if err := l.game.Save(ch); err != nil {
			l.log.Warn("auto-save failed", "character", ch.Name(), "error", err)
			failed++
			continue
		}
		saved++
	}
	return saved, failed
}

// advanceClock moves game time on and announces dawn and dusk.
func (l *EventLoop) advanceClock() {
	if !l.game.Clock.Tick() {
		return
	}
	if msg := l.game.Clock.Transition(); msg != "" {
		l.game.Router.Send(message.ToServer(message.Plain(msg)))
	}
}
