package precompute_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/deltapolygon/deltapolygon/point"
	"github.com/deltapolygon/deltapolygon/precompute"
)

func TestMarkUnmark(t *testing.T) {
	tb := precompute.New()
	pid := uuid.New()
	t0 := time.Now()

	tb.Mark(pid, t0)
	require.ElementsMatch(t, []time.Time{t0}, tb.MarkedTimes(pid))

	tb.Unmark(pid, t0)
	require.Empty(t, tb.MarkedTimes(pid))
}

func TestPrecomputeAndTryGetCopiesResult(t *testing.T) {
	tb := precompute.New()
	pid := uuid.New()
	t0 := time.Now()
	pts := []point.Point{{X: 1, Y: 1}}

	tb.Precompute(pid, t0, pts)
	got, ok := tb.TryGet(pid, t0)
	require.True(t, ok)
	require.Equal(t, pts, got)

	got[0].X = 999
	got2, _ := tb.TryGet(pid, t0)
	require.Equal(t, 1.0, got2[0].X)
}

func TestTryGetMissing(t *testing.T) {
	tb := precompute.New()
	_, ok := tb.TryGet(uuid.New(), time.Now())
	require.False(t, ok)
}

func TestPrecomputeAllMarkedSwallowsPerTimeErrors(t *testing.T) {
	tb := precompute.New()
	pid := uuid.New()
	t0 := time.Now()
	t1 := t0.Add(time.Hour)
	tb.Mark(pid, t0)
	tb.Mark(pid, t1)

	tb.PrecomputeAllMarked(pid, func(t time.Time) ([]point.Point, error) {
		if t.Equal(t1) {
			return nil, errors.New("boom")
		}
		return []point.Point{{X: float64(t.Unix() % 7), Y: 0}}, nil
	})

	_, ok := tb.TryGet(pid, t0)
	require.True(t, ok)
	_, ok = tb.TryGet(pid, t1)
	require.False(t, ok)
}

func TestPrecomputeMarkedBatchCapsMaterializedCount(t *testing.T) {
	tb := precompute.New()
	pid := uuid.New()
	t0 := time.Now()
	times := []time.Time{t0, t0.Add(time.Hour), t0.Add(2 * time.Hour)}
	for _, tm := range times {
		tb.Mark(pid, tm)
	}

	tb.PrecomputeMarkedBatch(pid, func(t time.Time) ([]point.Point, error) {
		return []point.Point{{X: float64(t.Unix())}}, nil
	}, 2)

	materialized := 0
	for _, tm := range times {
		if _, ok := tb.TryGet(pid, tm); ok {
			materialized++
		}
	}
	require.Equal(t, 2, materialized)
}

func TestInvalidateKeepsMarks(t *testing.T) {
	tb := precompute.New()
	pid := uuid.New()
	t0 := time.Now()
	tb.Mark(pid, t0)
	tb.Precompute(pid, t0, []point.Point{{X: 1}})

	tb.Invalidate(pid)

	_, ok := tb.TryGet(pid, t0)
	require.False(t, ok)
	require.ElementsMatch(t, []time.Time{t0}, tb.MarkedTimes(pid))
}

func TestClearDropsMarksAndEntries(t *testing.T) {
	tb := precompute.New()
	pid := uuid.New()
	t0 := time.Now()
	tb.Mark(pid, t0)
	tb.Precompute(pid, t0, []point.Point{{X: 1}})

	tb.Clear(pid)

	_, ok := tb.TryGet(pid, t0)
	require.False(t, ok)
	require.Empty(t, tb.MarkedTimes(pid))
}
