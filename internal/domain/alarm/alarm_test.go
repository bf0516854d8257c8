package alarm

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestDispositionOf covers the three bands, the (0,1) gap and non-finite codes.
func TestDispositionOf(t *testing.T) {
	t.Parallel()

	cases := map[float64]Disposition{
		-1:           DispositionResolved,
		-2:           DispositionResolved,
		math.Inf(-1): DispositionResolved,
		0:            DispositionWatch,
		0.5:          DispositionWatch,
		1:            DispositionConfirmed,
		2:            DispositionConfirmed,
		math.Inf(1):  DispositionConfirmed,
	}
	for code, want := range cases {
		require.Equal(t, want, DispositionOf(code), "code %v", code)
	}

	require.Equal(t, DispositionUnknown, DispositionOf(math.NaN()))
}

// TestVerdictFor checks the inclusive threshold boundary.
func TestVerdictFor(t *testing.T) {
	t.Parallel()

	require.Equal(t, TrueNegative, VerdictFor(time.Minute, time.Minute))
	require.Equal(t, TrueNegative, VerdictFor(time.Second, time.Minute))
	require.Equal(t, FalseNegative, VerdictFor(time.Minute+time.Nanosecond, time.Minute))
}

// TestPointSame verifies bit-level comparison semantics.
func TestPointSame(t *testing.T) {
	t.Parallel()

	require.True(t, Point{X: 10, Y: 20}.Same(Point{X: 10, Y: 20}))
	require.False(t, Point{X: 10, Y: 20}.Same(Point{X: 10, Y: 20.000002}))
	require.False(t, Point{X: 0}.Same(Point{X: float32(math.Copysign(0, -1))}))

	nan := float32(math.NaN())
	require.True(t, Point{X: nan}.Same(Point{X: nan}))
}

// TestIncidentClone verifies that Clone returns an independent copy and handles nil.
func TestIncidentClone(t *testing.T) {
	t.Parallel()
	require.Nil(t, (*Incident)(nil).Clone())

	i := NewIncident(Point{X: 1, Y: 2}, 0.5, 3*time.Second)
	c := i.Clone()

	require.Equal(t, i, c)
	require.NotSame(t, i, c)

	c.Magnitude = 1.5
	require.InDelta(t, 0.5, i.Magnitude, 0)
	require.Equal(t, 2*time.Second, i.Elapsed(5*time.Second))
}

// TestLevel checks names and activity.
func TestLevel(t *testing.T) {
	t.Parallel()

	require.False(t, Clear.Active())
	require.True(t, Suspect.Active())
	require.True(t, Confirmed.Active())
	require.Equal(t, "confirmed", Confirmed.String())
	require.Equal(t, "unknown", Level(9).String())
}

// TestPointKey checks that keys agree with Same.
func TestPointKey(t *testing.T) {
	t.Parallel()

	require.Equal(t, Point{X: 10, Y: 20}.Key(), Point{X: 10, Y: 20}.Key())
	require.NotEqual(t, Point{X: 10, Y: 20}.Key(), Point{X: 20, Y: 10}.Key())
	require.NotEqual(t, Point{}.Key(), Point{X: float32(math.Copysign(0, -1))}.Key())
}

// TestCase checks confirmation state and cloning.
func TestCase(t *testing.T) {
	t.Parallel()
	require.Nil(t, (*Case)(nil).Clone())

	c := NewCase(Point{X: 1, Y: 2}, time.Unix(100, 0))
	require.False(t, c.Confirmed())

	c.ConfirmedAt = time.Unix(160, 0)
	require.True(t, c.Confirmed())

	cloned := c.Clone()
	cloned.Reports = 7
	require.Zero(t, c.Reports)
	require.Equal(t, c.ID, cloned.ID)
}
