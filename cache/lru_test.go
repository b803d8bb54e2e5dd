package cache_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/deltapolygon/deltapolygon/cache"
	"github.com/deltapolygon/deltapolygon/point"
)

func TestPutGetRoundTripsAndCopies(t *testing.T) {
	c := cache.New(10)
	pid := uuid.New()
	t0 := time.Now()
	pts := []point.Point{{X: 1, Y: 2}}

	c.Put(pid, t0, pts)
	got, ok := c.Get(pid, t0)
	require.True(t, ok)
	require.Equal(t, pts, got)

	got[0].X = 999
	got2, _ := c.Get(pid, t0)
	require.Equal(t, 1.0, got2[0].X)
}

func TestGetMissing(t *testing.T) {
	c := cache.New(10)
	_, ok := c.Get(uuid.New(), time.Now())
	require.False(t, ok)
}

func TestCapacityEvictsLeastRecentlyUsed(t *testing.T) {
	c := cache.New(2)
	pidA, pidB, pidC := uuid.New(), uuid.New(), uuid.New()
	t0 := time.Now()

	c.Put(pidA, t0, []point.Point{{X: 1}})
	c.Put(pidB, t0, []point.Point{{X: 2}})
	c.Put(pidC, t0, []point.Point{{X: 3}}) // evicts A, the LRU entry

	_, ok := c.Get(pidA, t0)
	require.False(t, ok)
	_, ok = c.Get(pidB, t0)
	require.True(t, ok)
	_, ok = c.Get(pidC, t0)
	require.True(t, ok)
	require.Equal(t, 2, c.Len())
}

func TestInvalidatePolygonOnlyDropsThatPolygonsEntries(t *testing.T) {
	c := cache.New(10)
	pidA, pidB := uuid.New(), uuid.New()
	t0 := time.Now()
	t1 := t0.Add(time.Hour)

	c.Put(pidA, t0, []point.Point{{X: 1}})
	c.Put(pidA, t1, []point.Point{{X: 2}})
	c.Put(pidB, t0, []point.Point{{X: 3}})

	c.InvalidatePolygon(pidA)

	_, ok := c.Get(pidA, t0)
	require.False(t, ok)
	_, ok = c.Get(pidA, t1)
	require.False(t, ok)
	_, ok = c.Get(pidB, t0)
	require.True(t, ok)
	require.Equal(t, 1, c.Len())
}
