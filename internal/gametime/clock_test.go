package gametime

import (
	"sync"
	"testing"
)

func TestNewClock(t *testing.T) {
	tests := map[string]struct {
		start int
		exp   int
	}{
		"midnight": {start: 0, exp: 0},
		"noon":     {start: 12, exp: 12},
		"wraps":    {start: 25, exp: 1},
		"negative": {start: -1, exp: 23},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := NewClock(tt.start, 1).Hour(); got != tt.exp {
				t.Errorf("Expected hour %d, got %d", tt.exp, got)
			}
		})
	}
}

func TestTickAdvancesHour(t *testing.T) {
	c := NewClock(23, 3)

	if c.Tick() || c.Tick() {
		t.Fatal("hour should not change before three ticks")
	}
	if !c.Tick() {
		t.Fatal("third tick should advance the hour")
	}
	if c.Hour() != 0 {
		t.Errorf("Expected hour to wrap to 0, got %d", c.Hour())
	}
}

func TestIsDay(t *testing.T) {
	for hour := 0; hour < HoursPerDay; hour++ {
		exp := hour >= DawnHour && hour < DuskHour
		if got := NewClock(hour, 1).IsDay(); got != exp {
			t.Errorf("hour %d: IsDay() = %v, want %v", hour, got, exp)
		}
	}
}

func TestDescribe(t *testing.T) {
	tests := map[int]string{
		0:  "It is midnight.",
		6:  "It is dawn.",
		9:  "It is 09:00 in the morning.",
		12: "It is noon.",
		14: "It is 14:00 in the afternoon.",
		18: "It is dusk.",
		21: "It is 21:00 in the evening.",
		3:  "It is 03:00 in the night.",
	}
	for hour, exp := range tests {
		if got := NewClock(hour, 1).Describe(); got != exp {
			t.Errorf("hour %d: Describe() = %q, want %q", hour, got, exp)
		}
	}
}

func TestTransition(t *testing.T) {
	c := NewClock(5, 1)
	c.Tick()
	if c.Transition() != "The sun rises in the east." {
		t.Errorf("Expected dawn transition, got %q", c.Transition())
	}
	c.Tick()
	if c.Transition() != "" {
		t.Errorf("Expected no transition at 07:00, got %q", c.Transition())
	}
}

func TestConcurrentTicks(t *testing.T) {
	c := NewClock(0, 1)
	var wg sync.WaitGroup
	for i := 0; i < 48; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Tick()
			_ = c.IsDay()
		}()
	}
	wg.Wait()
	if c.Hour() != 0 {
		t.Errorf("Expected 48 ticks to return to hour 0, got %d", c.Hour())
	}
}
