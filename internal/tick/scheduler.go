// Package tick runs periodic maintenance on behalf of the event loop.
package tick

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Task is one periodic job.
type Task struct {
	Name string
	Run  func()

	running atomic.Bool
}

// Scheduler fires per-second and per-minute tasks. The owner calls Due on
// every loop iteration; each due task runs in its own goroutine and the
// caller continues immediately. A task still running from its previous
// firing is skipped.
type Scheduler struct {
	log *slog.Logger

	mu         sync.Mutex
	second     []*Task
	minute     []*Task
	nextSecond time.Time
	nextMinute time.Time

	wg sync.WaitGroup
}

// New returns a scheduler whose first ticks fall one second and one minute
// after start.
func New(start time.Time, log *slog.Logger) *Scheduler {
	return &Scheduler{
		log:        log,
		nextSecond: start.Add(time.Second),
		nextMinute: start.Add(time.Minute),
	}
}

// EverySecond registers fn to run once per second.
func (s *Scheduler) EverySecond(name string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.second = append(s.second, &Task{Name: name, Run: fn})
}

// EveryMinute registers fn to run once per minute.
func (s *Scheduler) EveryMinute(name string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.minute = append(s.minute, &Task{Name: name, Run: fn})
}

// Due fires the tasks whose period has elapsed at now. When active is false
// the periods still advance but nothing runs. It returns how many tasks
// were started.
func (s *Scheduler) Due(now time.Time, active bool) int {
	s.mu.Lock()
	var due []*Task
	if !now.Before(s.nextSecond) {
		s.nextSecond = now.Add(time.Second)
		due = append(due, s.second...)
	}
	if !now.Before(s.nextMinute) {
		s.nextMinute = now.Add(time.Minute)
		due = append(due, s.minute...)
	}
	s.mu.Unlock()

	if !active {
		return 0
	}
	started := 0
	for _, t := range due {
		if !t.running.CompareAndSwap(false, true) {
			s.log.Debug("tick task still running, skipped", "task", t.Name)
			continue
		}
		started++
		s.wg.Add(1)
		go s.run(t)
	}
	return started
}

func (s *Scheduler) run(t *Task) {
	defer s.wg.Done()
	defer t.running.Store(false)
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("tick task panicked", "task", t.Name, "panic", fmt.Sprint(r))
		}
	}()
	t.Run()
}

// Wait blocks until every started task has returned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
