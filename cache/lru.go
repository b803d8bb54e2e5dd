// Package cache implements a bounded reconstruction cache: an LRU map
// from (polygon_id, time) to a point list, with a reverse index enabling
// per-polygon invalidation without a full flush.
package cache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/google/uuid"
	"golang.org/x/exp/maps"

	"github.com/deltapolygon/deltapolygon/point"
)

// DefaultCapacity is the cache size used when none is configured.
const DefaultCapacity = 100

// Key identifies one reconstruction in the cache.
type Key struct {
	PolygonID uuid.UUID
	Time      time.Time
}

// Cache is a bounded, concurrency-safe LRU cache of polygon reconstructions.
// The underlying hashicorp/golang-lru.Cache supplies the hash-index-plus-
// doubly-linked-list eviction; Cache adds the reverse index needed for
// targeted invalidation.
type Cache struct {
	mu      sync.Mutex
	lru     *lru.Cache[Key, []point.Point]
	reverse map[uuid.UUID]map[Key]struct{}
}

// New returns a Cache bounded at capacity entries. capacity <= 0 uses
// DefaultCapacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Cache{reverse: make(map[uuid.UUID]map[Key]struct{})}
	l, err := lru.NewWithEvict[Key, []point.Point](capacity, c.onEvict)
	if err != nil {
		// capacity is always > 0 here, so NewWithEvict cannot fail.
		panic(err)
	}
	c.lru = l
	return c
}

func (c *Cache) onEvict(k Key, _ []point.Point) {
	if m := c.reverse[k.PolygonID]; m != nil {
		delete(m, k)
		if len(m) == 0 {
			delete(c.reverse, k.PolygonID)
		}
	}
}

// Get returns a copy of the cached reconstruction for (pid, t), moving it
// to the most-recently-used position.
func (c *Cache) Get(pid uuid.UUID, t time.Time) ([]point.Point, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pts, ok := c.lru.Get(Key{PolygonID: pid, Time: t})
	if !ok {
		return nil, false
	}
	cp := make([]point.Point, len(pts))
	copy(cp, pts)
	return cp, true
}

// Put inserts (or refreshes) the reconstruction for (pid, t), evicting the
// least-recently-used entry if the cache is at capacity.
func (c *Cache) Put(pid uuid.UUID, t time.Time, points []point.Point) {
	cp := make([]point.Point, len(points))
	copy(cp, points)

	c.mu.Lock()
	defer c.mu.Unlock()

	k := Key{PolygonID: pid, Time: t}
	c.lru.Add(k, cp)
	if c.reverse[pid] == nil {
		c.reverse[pid] = make(map[Key]struct{})
	}
	c.reverse[pid][k] = struct{}{}
}

// InvalidatePolygon drops every cached entry belonging to pid, in O(k)
// time where k is the number of entries cached for that polygon, leaving
// entries for unrelated polygons untouched.
func (c *Cache) InvalidatePolygon(pid uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := maps.Keys(c.reverse[pid])
	for _, k := range keys {
		c.lru.Remove(k)
	}
	delete(c.reverse, pid)
}

// Len returns the number of entries currently cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
