// Package gametime keeps the in-game hour used for day and night room
// descriptions.
package gametime

import (
	"fmt"
	"sync"
)

const (
	HoursPerDay = 24

	DawnHour = 6
	DuskHour = 18
)

// Clock is a 24-hour game clock advanced by the per-minute maintenance tick.
type Clock struct {
	mu             sync.RWMutex
	hour           int
	minutes        int
	minutesPerHour int
}

// NewClock starts at startHour. Each game hour lasts minutesPerHour real
// minutes; values below 1 are treated as 1.
func NewClock(startHour, minutesPerHour int) *Clock {
	if minutesPerHour < 1 {
		minutesPerHour = 1
	}
	return &Clock{
		hour:           ((startHour % HoursPerDay) + HoursPerDay) % HoursPerDay,
		minutesPerHour: minutesPerHour,
	}
}

// Tick records one real minute and reports whether the hour changed.
func (c *Clock) Tick() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.minutes++
	if c.minutes < c.minutesPerHour {
		return false
	}
	c.minutes = 0
	c.hour = (c.hour + 1) % HoursPerDay
	return true
}

// Hour returns the current game hour (0-23).
func (c *Clock) Hour() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hour
}

// IsDay reports whether the hour lies in [DawnHour, DuskHour).
func (c *Clock) IsDay() bool {
	h := c.Hour()
	return h >= DawnHour && h < DuskHour
}

// Period names the part of the day.
func (c *Clock) Period() string {
	switch h := c.Hour(); {
	case h < 6:
		return "night"
	case h < 12:
		return "morning"
	case h < 18:
		return "afternoon"
	default:
		return "evening"
	}
}

// Describe returns a sentence such as "It is 14:00 in the afternoon.".
func (c *Clock) Describe() string {
	switch h := c.Hour(); h {
	case 0:
		return "It is midnight."
	case DawnHour:
		return "It is dawn."
	case 12:
		return "It is noon."
	case DuskHour:
		return "It is dusk."
	default:
		return fmt.Sprintf("It is %02d:00 in the %s.", h, c.Period())
	}
}

// Transition returns the broadcast line for an hour change, or "" when the
// new hour is neither dawn nor dusk.
func (c *Clock) Transition() string {
	switch c.Hour() {
	case DawnHour:
		return "The sun rises in the east."
	case DuskHour:
		return "The sun sets in the west."
	}
	return ""
}
