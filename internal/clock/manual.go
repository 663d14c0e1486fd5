package clock

import (
	"sort"
	"sync"
	"time"
)

// Manual is a virtual clock for tests. Time moves only via Advance, which
// fires due timers in deadline order. Callbacks run outside the lock, so
// they may schedule further timers; a chained timer that lands inside the
// advanced window fires during the same Advance call.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	clock   *Manual
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{clock: m, at: m.now.Add(d), fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()
	m.AdvanceTo(target)
}

// AdvanceTo moves the clock to target, firing every timer due on the way.
func (m *Manual) AdvanceTo(target time.Time) {
	for {
		t := m.popDue(target)
		if t == nil {
			break
		}
		t.fn()
	}
	m.mu.Lock()
	if target.After(m.now) {
		m.now = target
	}
	m.mu.Unlock()
}

// popDue claims the earliest unfired timer at or before target and moves
// the clock to its deadline, or returns nil when none remain.
func (m *Manual) popDue(target time.Time) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()

	sort.SliceStable(m.timers, func(i, j int) bool {
		return m.timers[i].at.Before(m.timers[j].at)
	})
	for _, t := range m.timers {
		if t.fired || t.stopped {
			continue
		}
		if t.at.After(target) {
			break
		}
		t.fired = true
		if t.at.After(m.now) {
			m.now = t.at
		}
		return t
	}
	return nil
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}
