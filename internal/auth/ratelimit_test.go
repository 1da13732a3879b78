package auth

import (
	"testing"
	"time"

	"github.com/lawnchairsociety/hearthmud/internal/config"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(maxAttempts, lockout, maxLockout int) (*LoginRateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	rl := NewLoginRateLimiter(config.RateLimitConfig{
		MaxAttempts:       maxAttempts,
		LockoutSeconds:    lockout,
		MaxLockoutSeconds: maxLockout,
	})
	rl.now = clock.now
	return rl, clock
}

func TestLoginRateLimiter_Basic(t *testing.T) {
	rl, _ := newTestLimiter(3, 1, 10)
	ip := "192.168.1.1"

	if locked, _ := rl.RecordFailure(ip); locked {
		t.Error("first failure should not trigger lockout")
	}
	if locked, _ := rl.RecordFailure(ip); locked {
		t.Error("second failure should not trigger lockout")
	}

	locked, d := rl.RecordFailure(ip)
	if !locked {
		t.Error("third failure should trigger lockout")
	}
	if d != time.Second {
		t.Errorf("lockout duration = %v, want 1s", d)
	}
	if isLocked, _ := rl.IsLocked(ip); !isLocked {
		t.Error("IP should be locked")
	}
}

func TestLoginRateLimiter_LockoutExpires(t *testing.T) {
	rl, clock := newTestLimiter(1, 30, 300)
	ip := "10.0.0.1"

	rl.RecordFailure(ip)
	clock.advance(29 * time.Second)
	if locked, left := rl.IsLocked(ip); !locked || left != time.Second {
		t.Errorf("IsLocked() = %v, %v; want true, 1s", locked, left)
	}

	clock.advance(time.Second)
	if locked, _ := rl.IsLocked(ip); locked {
		t.Error("lockout should have expired")
	}
}

func TestLoginRateLimiter_FailureWhileLocked(t *testing.T) {
	rl, clock := newTestLimiter(1, 10, 100)
	ip := "10.0.0.1"

	rl.RecordFailure(ip)
	clock.advance(4 * time.Second)
	locked, left := rl.RecordFailure(ip)
	if !locked || left != 6*time.Second {
		t.Errorf("RecordFailure() while locked = %v, %v; want true, 6s", locked, left)
	}
	if rl.Attempts(ip) != 0 {
		t.Error("failures while locked should not count toward the next lockout")
	}
}

func TestLoginRateLimiter_SuccessClears(t *testing.T) {
	rl, _ := newTestLimiter(3, 1, 10)
	ip := "192.168.1.1"

	rl.RecordFailure(ip)
	rl.RecordFailure(ip)
	rl.RecordSuccess(ip)

	if n := rl.Attempts(ip); n != 0 {
		t.Errorf("expected 0 attempts after success, got %d", n)
	}
	if locked, _ := rl.RecordFailure(ip); locked {
		t.Error("failure after success should start a fresh count")
	}
}

func TestLoginRateLimiter_ExponentialBackoff(t *testing.T) {
	rl, clock := newTestLimiter(1, 1, 10)
	ip := "192.168.1.1"

	for _, want := range []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 10 * time.Second, 10 * time.Second} {
		_, d := rl.RecordFailure(ip)
		if d != want {
			t.Fatalf("lockout = %v, want %v", d, want)
		}
		clock.advance(d)
	}
}

func TestLoginRateLimiter_MultipleIPs(t *testing.T) {
	rl, _ := newTestLimiter(2, 1, 10)
	ip1 := "192.168.1.1"
	ip2 := "192.168.1.2"

	rl.RecordFailure(ip1)
	rl.RecordFailure(ip1)

	if locked, _ := rl.IsLocked(ip1); !locked {
		t.Error("IP1 should be locked")
	}
	if locked, _ := rl.IsLocked(ip2); locked {
		t.Error("IP2 should not be locked")
	}
	if locked, _ := rl.RecordFailure(ip2); locked {
		t.Error("first failure for IP2 should not trigger lockout")
	}
}

func TestLoginRateLimiter_Cleanup(t *testing.T) {
	rl, clock := newTestLimiter(1, 60, 600)

	rl.RecordFailure("old")
	clock.advance(5 * time.Minute)
	rl.RecordFailure("recent")

	if n := rl.Cleanup(); n != 0 {
		t.Errorf("Cleanup() removed %d entries too early", n)
	}

	clock.advance(7 * time.Minute)
	if n := rl.Cleanup(); n != 1 {
		t.Errorf("Cleanup() removed %d entries, want 1", n)
	}
	if rl.Len() != 1 {
		t.Errorf("Len() = %d, want 1", rl.Len())
	}
	if locked, _ := rl.IsLocked("old"); locked {
		t.Error("cleaned entry should not be locked")
	}
}

func TestNewLoginRateLimiterDefaults(t *testing.T) {
	rl := NewLoginRateLimiter(config.RateLimitConfig{})
	if rl.maxAttempts != 5 || rl.lockout != 30*time.Second || rl.maxLockout != 300*time.Second {
		t.Errorf("unexpected defaults: %d, %v, %v", rl.maxAttempts, rl.lockout, rl.maxLockout)
	}
}
