package battle

import (
	"fmt"
	"sync"
	"time"
)

type fakeTimer struct {
	mu      sync.Mutex
	f       func()
	delay   time.Duration
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Fire runs the callback even when stopped, like a timer whose goroutine already
// started before Stop was called.
func (t *fakeTimer) Fire() {
	t.mu.Lock()
	t.fired = true
	f := t.f
	t.mu.Unlock()
	f()
}

type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	timer := &fakeTimer{f: f, delay: d}
	s.timers = append(s.timers, timer)
	return timer
}

func (s *fakeScheduler) last() *fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.timers) == 0 {
		return nil
	}
	return s.timers[len(s.timers)-1]
}

func (s *fakeScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	next := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		next++
		return fmt.Sprintf("id-%d", next)
	}
}

func newTestMachine() (*Machine, *fakeScheduler) {
	sched := &fakeScheduler{}
	base := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)
	m := NewMachine(DefaultSettings(),
		WithScheduler(sched),
		WithClock(func() time.Time { return base }),
		WithIDs(sequentialIDs()),
	)
	return m, sched
}

func gift(username string, team Team, value int) Incoming {
	return Incoming{Kind: ActivityGift, Username: username, Team: team, GiftName: "Rose", GiftValue: value}
}
