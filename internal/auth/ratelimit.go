// Package auth throttles repeated failed logins per remote address.
package auth

import (
	"sync"
	"time"

	"github.com/lawnchairsociety/hearthmud/internal/config"
)

// staleAfter is how long an unlocked entry lingers before Cleanup drops it.
const staleAfter = 10 * time.Minute

// LoginRateLimiter tracks failed login attempts and enforces lockouts that
// double with each repeat offence, up to a ceiling.
type LoginRateLimiter struct {
	mu          sync.Mutex
	attempts    map[string]*attemptInfo
	maxAttempts int
	lockout     time.Duration
	maxLockout  time.Duration
	now         func() time.Time
}

type attemptInfo struct {
	failedAttempts int
	lockedUntil    time.Time
	lockoutCount   int
	lastFailure    time.Time
}

// NewLoginRateLimiter creates a limiter. Zero settings fall back to 5
// attempts, 30s and 300s.
func NewLoginRateLimiter(cfg config.RateLimitConfig) *LoginRateLimiter {
	rl := &LoginRateLimiter{
		attempts:    make(map[string]*attemptInfo),
		maxAttempts: cfg.MaxAttempts,
		lockout:     time.Duration(cfg.LockoutSeconds) * time.Second,
		maxLockout:  time.Duration(cfg.MaxLockoutSeconds) * time.Second,
		now:         time.Now,
	}
	if rl.maxAttempts <= 0 {
		rl.maxAttempts = 5
	}
	if rl.lockout <= 0 {
		rl.lockout = 30 * time.Second
	}
	if rl.maxLockout < rl.lockout {
		rl.maxLockout = 10 * rl.lockout
	}
	return rl
}

// IsLocked reports whether ip is locked out and for how much longer.
func (rl *LoginRateLimiter) IsLocked(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	info, ok := rl.attempts[ip]
	if !ok {
		return false, 0
	}
	if now := rl.now(); now.Before(info.lockedUntil) {
		return true, info.lockedUntil.Sub(now)
	}
	return false, 0
}

// RecordFailure counts a failed login. It reports whether ip is now locked
// and the lockout remaining.
func (rl *LoginRateLimiter) RecordFailure(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	info, ok := rl.attempts[ip]
	if !ok {
		info = &attemptInfo{}
		rl.attempts[ip] = info
	}
	info.lastFailure = now

	if now.Before(info.lockedUntil) {
		return true, info.lockedUntil.Sub(now)
	}

	info.failedAttempts++
	if info.failedAttempts < rl.maxAttempts {
		return false, 0
	}

	info.lockoutCount++
	d := rl.lockout
	for i := 1; i < info.lockoutCount; i++ {
		if d >= rl.maxLockout/2 {
			d = rl.maxLockout
			break
		}
		d *= 2
	}
	if d > rl.maxLockout {
		d = rl.maxLockout
	}
	info.lockedUntil = now.Add(d)
	info.failedAttempts = 0
	return true, d
}

// RecordSuccess forgets ip's history.
func (rl *LoginRateLimiter) RecordSuccess(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.attempts, ip)
}

// Attempts returns the failures counted toward the next lockout.
func (rl *LoginRateLimiter) Attempts(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if info, ok := rl.attempts[ip]; ok {
		return info.failedAttempts
	}
	return 0
}

// Len returns the number of tracked addresses.
func (rl *LoginRateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.attempts)
}

// Cleanup drops entries whose lockout and last failure are both older than
// ten minutes. It returns how many were removed.
func (rl *LoginRateLimiter) Cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-staleAfter)
	removed := 0
	for ip, info := range rl.attempts {
		if info.lockedUntil.Before(cutoff) && info.lastFailure.Before(cutoff) {
			delete(rl.attempts, ip)
			removed++
		}
	}
	return removed
}
