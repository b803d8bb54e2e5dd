// Package precompute implements the precomputation table: a set of
// marked times per polygon, and a map from (polygon, time) to a
// materialized reconstruction.
package precompute

import (
	"sync"
	"time"

	"github.com/gammazero/deque"
	"github.com/google/uuid"

	"github.com/deltapolygon/deltapolygon/point"
)

// ReconstructFunc reconstructs a polygon at an instant, the same signature
// as polygon.TemporalPolygon.ReconstructAt.
type ReconstructFunc func(t time.Time) ([]point.Point, error)

type key struct {
	pid uuid.UUID
	t   time.Time
}

// Table holds the marks and materialized reconstructions for every
// polygon. The zero value is not usable; use New.
type Table struct {
	mu          sync.RWMutex
	marks       map[uuid.UUID]map[time.Time]struct{}
	precomputed map[key][]point.Point
}

// New returns an empty precomputation table.
func New() *Table {
	return &Table{
		marks:       make(map[uuid.UUID]map[time.Time]struct{}),
		precomputed: make(map[key][]point.Point),
	}
}

// Mark flags t for future materialization under pid.
func (tb *Table) Mark(pid uuid.UUID, t time.Time) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	if tb.marks[pid] == nil {
		tb.marks[pid] = make(map[time.Time]struct{})
	}
	tb.marks[pid][t] = struct{}{}
}

// Unmark removes t from pid's marks. It does not drop any already
// materialized entry for (pid, t).
func (tb *Table) Unmark(pid uuid.UUID, t time.Time) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	delete(tb.marks[pid], t)
}

// Precompute stores points as the materialized reconstruction of pid at t.
func (tb *Table) Precompute(pid uuid.UUID, t time.Time, points []point.Point) {
	cp := make([]point.Point, len(points))
	copy(cp, points)

	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.precomputed[key{pid, t}] = cp
}

// TryGet returns a copy of the materialized reconstruction of pid at t, if
// present.
func (tb *Table) TryGet(pid uuid.UUID, t time.Time) ([]point.Point, bool) {
	tb.mu.RLock()
	pts, ok := tb.precomputed[key{pid, t}]
	tb.mu.RUnlock()
	if !ok {
		return nil, false
	}
	cp := make([]point.Point, len(pts))
	copy(cp, pts)
	return cp, true
}

// PrecomputeAllMarked materializes reconstruct(t) for every time currently
// marked under pid. It snapshots the mark set outside the write lock so
// reconstruction (which may itself take locks elsewhere) never runs while
// holding the table's lock; errors for individual times are swallowed.
func (tb *Table) PrecomputeAllMarked(pid uuid.UUID, reconstruct ReconstructFunc) {
	tb.PrecomputeMarkedBatch(pid, reconstruct, 0)
}

// PrecomputeMarkedBatch is PrecomputeAllMarked bounded to at most
// maxBatch times (0 or negative means unbounded), for callers that want
// to cap how much work one call performs. A bounded call picks only marked
// times not yet materialized, so repeated calls work through the rest.
func (tb *Table) PrecomputeMarkedBatch(pid uuid.UUID, reconstruct ReconstructFunc, maxBatch int) {
	tb.mu.RLock()
	marked := tb.marks[pid]
	work := new(deque.Deque[time.Time])
	for t := range marked {
		if maxBatch > 0 {
			if work.Len() >= maxBatch {
				break
			}
			if _, done := tb.precomputed[key{pid, t}]; done {
				continue
			}
		}
		work.PushBack(t)
	}
	tb.mu.RUnlock()

	for work.Len() > 0 {
		t := work.PopFront()
		pts, err := reconstruct(t)
		if err != nil {
			continue
		}
		tb.Precompute(pid, t, pts)
	}
}

// Invalidate drops every materialized entry for pid, keeping its marks.
func (tb *Table) Invalidate(pid uuid.UUID) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	for t := range tb.marks[pid] {
		delete(tb.precomputed, key{pid, t})
	}
	// a polygon can have precomputed entries for times no longer marked
	// (e.g. after Unmark); sweep those too.
	for k := range tb.precomputed {
		if k.pid == pid {
			delete(tb.precomputed, k)
		}
	}
}

// Clear drops both the marks and the materialized entries for pid.
func (tb *Table) Clear(pid uuid.UUID) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	delete(tb.marks, pid)
	for k := range tb.precomputed {
		if k.pid == pid {
			delete(tb.precomputed, k)
		}
	}
}

// MarkedTimes returns a snapshot of the times currently marked under pid.
func (tb *Table) MarkedTimes(pid uuid.UUID) []time.Time {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	out := make([]time.Time, 0, len(tb.marks[pid]))
	for t := range tb.marks[pid] {
		out = append(out, t)
	}
	return out
}
