// Package vertex implements the per-vertex state history: an ordered list
// of VertexStates, binary search by time, and the cumulative delta-
// resolution algorithm that turns a history into a position at an instant.
//
// Each Vertex guards its own history with an internal RWMutex: readers on
// different vertices never contend, and a reconstruction walking many
// vertices only ever holds one vertex's lock at a time.
package vertex

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/deltapolygon/deltapolygon/point"
	"github.com/deltapolygon/deltapolygon/vstate"
)

// ErrMissingState means no state in the vertex's history contains the
// requested instant.
var ErrMissingState = errors.New("vertex: no state covers the requested time")

// epsilon nudges a Delta state's interval start backward by one instant
// when checking whether a preceding Function state's interval reaches up
// to (but not including) the boundary where the Delta state begins.
const epsilon = time.Nanosecond

// Vertex is one polygon vertex's identity plus its time-ordered state
// history: states are ordered by interval start, and at most one state is
// open-ended, which if present is last.
type Vertex struct {
	ID int

	mu     sync.RWMutex
	states []vstate.State
}

// New creates an empty vertex with the given id.
func New(id int) *Vertex {
	return &Vertex{ID: id}
}

// NewWithInitialState creates a vertex whose history starts with s.
func NewWithInitialState(id int, s vstate.State) *Vertex {
	v := New(id)
	v.states = append(v.states, s)
	return v
}

// AddState appends sNew to the history. If the history is non-empty and
// the last state is open-ended, it is closed at sNew's interval start
// first. No ordering check is performed on sNew's start — callers are
// expected to append forward in time.
func (v *Vertex) AddState(sNew vstate.State) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if n := len(v.states); n > 0 {
		last := v.states[n-1]
		if last.Interval.IsOpenEnded() {
			v.states[n-1] = closeAt(last, sNew.Interval.Start)
		}
	}
	v.states = append(v.states, sNew)
}

// closeAt returns a copy of s with its interval closed at end, preserving
// flavor and payload.
func closeAt(s vstate.State, end time.Time) vstate.State {
	s.Interval = s.Interval.WithEnd(end)
	return s
}

// States returns a snapshot copy of the history, ordered by interval start.
func (v *Vertex) States() []vstate.State {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make([]vstate.State, len(v.states))
	copy(out, v.states)
	return out
}

// Len returns the number of states in the history.
func (v *Vertex) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.states)
}

// FindStateAt binary searches for the largest index i with
// states[i].Interval.Start <= t, then falls through backwards while that
// still holds, returning the first state whose interval actually contains
// t. Complexity is O(log H) typical, O(H) worst case under overlapping
// states.
func (v *Vertex) FindStateAt(t time.Time) (vstate.State, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	idx, ok := v.findStateIndexAtLocked(t)
	if !ok {
		return vstate.State{}, false
	}
	return v.states[idx], true
}

// findStateIndexAtLocked is the index-returning core of FindStateAt, used
// internally so the delta-resolution walk can iterate the states strictly
// preceding the found one without re-comparing values.
func (v *Vertex) findStateIndexAtLocked(t time.Time) (int, bool) {
	states := v.states
	if len(states) == 0 {
		return 0, false
	}

	i := sort.Search(len(states), func(i int) bool {
		return states[i].Interval.Start.After(t)
	}) - 1
	if i < 0 {
		return 0, false
	}
	if states[i].Interval.Contains(t) {
		return i, true
	}
	for j := i; j >= 0 && !states[j].Interval.Start.After(t); j-- {
		if states[j].Interval.Contains(t) {
			return j, true
		}
	}
	return 0, false
}

// PositionAt resolves the vertex's position at t by locating the covering
// state and, for Delta states, walking forward through earlier states
// accumulating deltas from the nearest preceding checkpoint (an Absolute
// point, or a Function evaluated at the delta's interval start).
func (v *Vertex) PositionAt(t time.Time) (point.Point, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	idx, ok := v.findStateIndexAtLocked(t)
	if !ok {
		return point.Point{}, ErrMissingState
	}
	s := v.states[idx]

	switch s.Flavor {
	case vstate.FlavorFunction:
		return s.Fn.PositionAt(t), nil
	case vstate.FlavorAbsolute:
		return s.Point, nil
	case vstate.FlavorDelta:
		return v.resolveDeltaLocked(idx), nil
	default:
		panic("vertex: unknown state flavor")
	}
}

// resolveDeltaLocked resolves the Delta state at v.states[idx]: walking
// forward from the first state, it accumulates a running base across the
// earlier states v.states[:idx], resetting at each Absolute or Function checkpoint,
// and returns base + delta. If no checkpoint precedes it, base is the zero
// point and the result is simply the delta itself — documented as
// undefined usage (a Delta chain with no anchor).
func (v *Vertex) resolveDeltaLocked(idx int) point.Point {
	s := v.states[idx]
	var base point.Point
	haveBase := false
	boundary := s.Interval.Start.Add(-epsilon)

	for _, p := range v.states[:idx] {
		switch p.Flavor {
		case vstate.FlavorFunction:
			if p.Interval.Contains(boundary) {
				base = p.Fn.PositionAt(boundary)
				haveBase = true
			}
		case vstate.FlavorAbsolute:
			base = p.Point
			haveBase = true
		case vstate.FlavorDelta:
			if haveBase {
				base = base.Add(p.Delta())
			}
		}
	}
	return base.Add(s.Delta())
}
