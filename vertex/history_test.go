package vertex_test

import (
	"sync"
	"testing"
	"time"

	"github.com/deltapolygon/deltapolygon/point"
	"github.com/deltapolygon/deltapolygon/tfunc"
	"github.com/deltapolygon/deltapolygon/vertex"
	"github.com/deltapolygon/deltapolygon/vstate"
	"github.com/stretchr/testify/require"
)

func TestAddStateClosesPreviousOpenEnded(t *testing.T) {
	t0 := time.Now()
	t1 := t0.Add(time.Hour)
	v := vertex.NewWithInitialState(0, vstate.NewAbsolute(point.Point{X: 0, Y: 0}, point.Open(t0)))
	v.AddState(vstate.NewAbsolute(point.Point{X: 5, Y: 5}, point.Open(t1)))

	states := v.States()
	require.Len(t, states, 2)
	require.False(t, states[0].Interval.IsOpenEnded())
	require.True(t, states[0].Interval.End.Equal(t1))
	require.True(t, states[1].Interval.IsOpenEnded())
}

func TestPositionAtAbsolute(t *testing.T) {
	t0 := time.Now()
	v := vertex.NewWithInitialState(0, vstate.NewAbsolute(point.Point{X: 1, Y: 2}, point.Open(t0)))
	p, err := v.PositionAt(t0.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, point.Point{X: 1, Y: 2}, p)
}

func TestPositionAtMissingBeforeHistory(t *testing.T) {
	t0 := time.Now()
	v := vertex.NewWithInitialState(0, vstate.NewAbsolute(point.Point{X: 1, Y: 2}, point.Open(t0)))
	_, err := v.PositionAt(t0.Add(-time.Hour))
	require.ErrorIs(t, err, vertex.ErrMissingState)
}

func TestPositionAtDeltaAccumulatesFromAbsoluteAnchor(t *testing.T) {
	t0 := time.Now()
	t1 := t0.Add(time.Hour)
	t2 := t0.Add(2 * time.Hour)
	v := vertex.NewWithInitialState(0, vstate.NewAbsolute(point.Point{X: 0, Y: 0}, point.Open(t0)))
	v.AddState(vstate.NewDelta(2, 2, point.Open(t1)))
	v.AddState(vstate.NewDelta(3, -1, point.Open(t2)))

	p1, err := v.PositionAt(t1.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, point.Point{X: 2, Y: 2}, p1)

	p2, err := v.PositionAt(t2.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, point.Point{X: 5, Y: 1}, p2)
}

func TestPositionAtLargeMoveReanchors(t *testing.T) {
	t0 := time.Now()
	t1 := t0.Add(time.Hour)
	t2 := t0.Add(2 * time.Hour)
	v := vertex.NewWithInitialState(0, vstate.NewAbsolute(point.Point{X: 0, Y: 0}, point.Open(t0)))
	v.AddState(vstate.NewDelta(2, 2, point.Open(t1)))
	// re-anchor: an Absolute state resets accumulation regardless of prior deltas.
	v.AddState(vstate.NewAbsolute(point.Point{X: 500, Y: 500}, point.Open(t2)))

	p, err := v.PositionAt(t2.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, point.Point{X: 500, Y: 500}, p)

	// earlier times are unaffected by the re-anchor.
	pBefore, err := v.PositionAt(t0)
	require.NoError(t, err)
	require.Equal(t, point.Point{X: 0, Y: 0}, pBefore)
}

func TestPositionAtFunctionCheckpointsDeltas(t *testing.T) {
	t0 := time.Now()
	t1 := t0.Add(time.Hour)
	t2 := t0.Add(2 * time.Hour)

	fn := tfunc.NewLinear(point.Point{X: 0, Y: 0}, t0, 1, 0) // x = dt seconds
	v := vertex.NewWithInitialState(0, vstate.NewFunction(fn, point.Open(t0)))
	v.AddState(vstate.NewDelta(10, 10, point.Open(t1)))

	fnEndPos := fn.PositionAt(t1)
	p, err := v.PositionAt(t2)
	require.NoError(t, err)
	require.InDelta(t, fnEndPos.X+10, p.X, 1e-6)
	require.InDelta(t, fnEndPos.Y+10, p.Y, 1e-6)
}

func TestPositionAtUndefinedDeltaWithNoAnchorReturnsDeltaAlone(t *testing.T) {
	t0 := time.Now()
	v := vertex.New(0)
	v.AddState(vstate.NewDelta(3, 4, point.Open(t0)))
	p, err := v.PositionAt(t0)
	require.NoError(t, err)
	require.Equal(t, point.Point{X: 3, Y: 4}, p)
}

func TestFindStateAtBinarySearchOverManyStates(t *testing.T) {
	t0 := time.Now()
	v := vertex.New(0)
	n := 200
	for i := 0; i < n; i++ {
		ti := t0.Add(time.Duration(i) * time.Minute)
		v.AddState(vstate.NewAbsolute(point.Point{X: float64(i), Y: float64(i)}, point.Open(ti)))
	}
	mid := t0.Add(time.Duration(n/2) * time.Minute)
	p, err := v.PositionAt(mid)
	require.NoError(t, err)
	require.Equal(t, point.Point{X: float64(n / 2), Y: float64(n / 2)}, p)
}

func TestValidateDetectsGap(t *testing.T) {
	t0 := time.Now()
	gapStart := t0.Add(time.Hour)
	v := vertex.New(0)
	// construct a history with a gap: AddState only closes an open-ended
	// last state, and the first state here is already closed, so the gap
	// between its end and the next start survives.
	v.AddState(vstate.NewAbsolute(point.Point{}, point.Closed(t0, t0.Add(30*time.Minute))))
	v.AddState(vstate.NewAbsolute(point.Point{X: 1}, point.Open(gapStart)))

	issues := v.Validate()
	require.Len(t, issues, 1)
	require.False(t, issues[0].Overlap)
}

func TestRepairClosesOverlap(t *testing.T) {
	t0 := time.Now()
	v := vertex.New(0)
	v.AddState(vstate.NewAbsolute(point.Point{}, point.Closed(t0, t0.Add(2*time.Hour))))
	v.AddState(vstate.NewAbsolute(point.Point{X: 1}, point.Open(t0.Add(time.Hour))))

	issues := v.Validate()
	require.Len(t, issues, 1)
	require.True(t, issues[0].Overlap)

	v.Repair()
	require.Empty(t, v.Validate())
}

func TestConcurrentReadsDoNotRace(t *testing.T) {
	t0 := time.Now()
	v := vertex.NewWithInitialState(0, vstate.NewAbsolute(point.Point{X: 1, Y: 1}, point.Open(t0)))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = v.PositionAt(t0.Add(time.Minute))
		}()
	}
	wg.Wait()
}
