package presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cureverse/cureverse/pkg/clock"
)

func TestRemainingDwell(t *testing.T) {
	fake := clock.NewFake(time.Unix(1_700_000_000, 0))
	timer := New(fake)

	token := timer.Start()
	require.False(t, token.IsZero())
	require.Equal(t, DefaultMinDwell, timer.RemainingDwell(token, DefaultMinDwell))

	fake.Advance(200 * time.Millisecond)
	require.Equal(t, 1300*time.Millisecond, timer.RemainingDwell(token, DefaultMinDwell))

	fake.Advance(1300 * time.Millisecond)
	require.Zero(t, timer.RemainingDwell(token, DefaultMinDwell))

	fake.Advance(1500 * time.Millisecond)
	require.Zero(t, timer.RemainingDwell(token, DefaultMinDwell), "never negative")
}

func TestRemainingDwellZeroToken(t *testing.T) {
	timer := New(clock.NewFake(time.Unix(0, 1)))
	require.Zero(t, timer.RemainingDwell(Token{}, DefaultMinDwell))
}

func TestRemainingDwellNoFloor(t *testing.T) {
	timer := New(clock.NewFake(time.Unix(0, 1)))
	require.Zero(t, timer.RemainingDwell(timer.Start(), 0))
}
