// Package presence tracks the "assistant is typing" indicator cycle and the
// minimum time it must stay visible.
package presence

import (
	"time"

	"github.com/cureverse/cureverse/pkg/clock"
)

// DefaultMinDwell is the shortest time the indicator stays on screen.
const DefaultMinDwell = 1500 * time.Millisecond

// Token marks the start of one indicator cycle. The zero Token means no cycle
// is outstanding.
type Token struct {
	startedAt time.Time
}

// IsZero reports whether the token marks no cycle.
func (t Token) IsZero() bool { return t.startedAt.IsZero() }

// StartedAt returns the instant the cycle began.
func (t Token) StartedAt() time.Time { return t.startedAt }

// Timer computes remaining dwell from wall-clock time.
type Timer struct {
	clock clock.Clock
}

// New returns a Timer reading c. A nil clock uses the real clock.
func New(c clock.Clock) *Timer {
	if c == nil {
		c = clock.New()
	}
	return &Timer{clock: c}
}

// Start begins a cycle at the current instant.
func (t *Timer) Start() Token {
	return Token{startedAt: t.clock.Now()}
}

// RemainingDwell returns max(0, minDwell - elapsed since token).
func (t *Timer) RemainingDwell(token Token, minDwell time.Duration) time.Duration {
	if token.IsZero() || minDwell <= 0 {
		return 0
	}
	remaining := minDwell - t.clock.Now().Sub(token.startedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}
