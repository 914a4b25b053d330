// Package clock abstracts wall-clock time so that dwell-time and replay logic
// can be driven deterministically in tests.
package clock

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock reports the current time and schedules callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

type adapter struct {
	c clockwork.Clock
}

// New returns the real wall clock.
func New() Clock {
	return adapter{c: clockwork.NewRealClock()}
}

func (a adapter) Now() time.Time { return a.c.Now() }

func (a adapter) AfterFunc(d time.Duration, f func()) Timer {
	return a.c.AfterFunc(d, f)
}

// Fake is a manually advanced Clock over clockwork's fake clock. Advance
// returns only after every callback it made due has finished running.
type Fake struct {
	fc *clockwork.FakeClock

	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	owner    *Fake
	inner    clockwork.Timer
	deadline time.Time
	done     chan struct{}
	stopped  bool
}

// NewFake returns a Fake reading start.
func NewFake(start time.Time) *Fake {
	return &Fake{fc: clockwork.NewFakeClockAt(start)}
}

func (f *Fake) Now() time.Time { return f.fc.Now() }

func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	t := &fakeTimer{owner: f, deadline: f.fc.Now().Add(d), done: make(chan struct{})}
	f.mu.Lock()
	f.timers = append(f.timers, t)
	f.mu.Unlock()
	t.inner = f.fc.AfterFunc(d, func() {
		defer close(t.done)
		fn()
	})
	return t
}

// Advance moves the clock forward by d and waits for the callbacks that
// became due.
func (f *Fake) Advance(d time.Duration) {
	f.fc.Advance(d)
	now := f.fc.Now()

	f.mu.Lock()
	var due, rest []*fakeTimer
	for _, t := range f.timers {
		switch {
		case t.stopped:
		case t.deadline.After(now):
			rest = append(rest, t)
		default:
			due = append(due, t)
		}
	}
	f.timers = rest
	f.mu.Unlock()

	for _, t := range due {
		<-t.done
	}
}

// Pending reports how many callbacks are scheduled and not yet due.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

func (t *fakeTimer) Stop() bool {
	ok := t.inner.Stop()
	if ok {
		t.owner.mu.Lock()
		t.stopped = true
		t.owner.mu.Unlock()
	}
	return ok
}
