// Package statemgr implements the state manager: the update policy that
// decides whether a vertex move becomes a Delta or an Absolute state,
// batch updates sharing one delta across vertices, identical-change
// detection, and linear-pattern detection.
package statemgr

import (
	"math"
	"sort"
	"time"

	"github.com/deltapolygon/deltapolygon/point"
	"github.com/deltapolygon/deltapolygon/tfunc"
	"github.com/deltapolygon/deltapolygon/vertex"
	"github.com/deltapolygon/deltapolygon/vstate"
	"gonum.org/v1/gonum/floats"
)

// UpdateVertex appends a Delta state when useDelta is set and the move
// from the vertex's current position at tChange is within deltaThreshold
// on both axes (Chebyshev/L-infinity distance), otherwise appends an
// Absolute state. Both branches use interval [tChange, +inf), which
// AddState closes against whatever was previously open.
func UpdateVertex(v *vertex.Vertex, newPoint point.Point, tChange time.Time, useDelta bool, deltaThreshold float64) {
	pCur, ok := currentPosition(v, tChange)

	if useDelta && ok {
		d := newPoint.Sub(pCur)
		if math.Max(math.Abs(d.X), math.Abs(d.Y)) <= deltaThreshold {
			v.AddState(vstate.NewDelta(d.X, d.Y, point.Open(tChange)))
			return
		}
	}
	v.AddState(vstate.NewAbsolute(newPoint, point.Open(tChange)))
}

// currentPosition resolves the vertex's position at tChange, falling back
// to the first state's own resolved position when tChange precedes all
// history.
func currentPosition(v *vertex.Vertex, tChange time.Time) (point.Point, bool) {
	if p, err := v.PositionAt(tChange); err == nil {
		return p, true
	}
	states := v.States()
	if len(states) == 0 {
		return point.Point{}, false
	}
	if tChange.Before(states[0].Interval.Start) {
		if p, err := v.PositionAt(states[0].Interval.Start); err == nil {
			return p, true
		}
	}
	return point.Point{}, false
}

// UpdateVerticesWithSameDelta applies a shared delta update: every vertex
// in vertexIDs gets a Delta state with the same (dx, dy) at interval
// [tChange, +inf). The first id in the list owns the group — its state
// carries the remaining ids as GroupedVertexIDs; the others carry an
// equivalent but un-tagged Delta state, avoiding redundant bookkeeping on
// non-owning members.
func UpdateVerticesWithSameDelta(vertices map[int]*vertex.Vertex, vertexIDs []int, dx, dy float64, tChange time.Time) {
	if len(vertexIDs) == 0 {
		return
	}
	iv := point.Open(tChange)
	owner := vertexIDs[0]
	vertices[owner].AddState(vstate.NewDelta(dx, dy, iv).WithGroup(append([]int(nil), vertexIDs[1:]...)))
	for _, id := range vertexIDs[1:] {
		vertices[id].AddState(vstate.NewDelta(dx, dy, iv))
	}
}

// IdenticalChangeGroup is one set of vertices whose state_at(t) was found
// equivalent.
type IdenticalChangeGroup struct {
	VertexIDs []int
}

// DetectIdenticalChanges groups vertexIDs by vstate.Equivalent of their
// state covering t, reporting only groups of size >= 2. It is a read-only
// reporting/compression aid — it never rewrites history.
func DetectIdenticalChanges(vertices map[int]*vertex.Vertex, vertexIDs []int, t time.Time) []IdenticalChangeGroup {
	type bucket struct {
		rep vstate.State
		ids []int
	}
	var buckets []bucket

	for _, id := range vertexIDs {
		s, ok := vertices[id].FindStateAt(t)
		if !ok {
			continue
		}
		placed := false
		for i := range buckets {
			if vstate.Equivalent(buckets[i].rep, s) {
				buckets[i].ids = append(buckets[i].ids, id)
				placed = true
				break
			}
		}
		if !placed {
			buckets = append(buckets, bucket{rep: s, ids: []int{id}})
		}
	}

	var out []IdenticalChangeGroup
	for _, b := range buckets {
		if len(b.ids) >= 2 {
			ids := append([]int(nil), b.ids...)
			sort.Ints(ids)
			out = append(out, IdenticalChangeGroup{VertexIDs: ids})
		}
	}
	return out
}

// DetectLinearPattern samples v's position at max(3,
// floor((tEnd-tStart)/10s)) evenly spaced instants in [tStart, tEnd],
// estimates a constant velocity from the first and last samples, and
// returns a Linear TemporalFunction if every sample deviates from that
// linear prediction by no more than tolerance on each axis. Returns
// ok=false if any sample is missing or the fit exceeds tolerance.
func DetectLinearPattern(v *vertex.Vertex, tStart, tEnd time.Time, tolerance float64) (tfunc.Function, bool) {
	n := int(tEnd.Sub(tStart) / (10 * time.Second))
	if n < 3 {
		n = 3
	}

	samples := make([]point.Point, n)
	times := make([]time.Time, n)
	step := tEnd.Sub(tStart) / time.Duration(n-1)
	for i := 0; i < n; i++ {
		ti := tStart.Add(time.Duration(i) * step)
		p, err := v.PositionAt(ti)
		if err != nil {
			return tfunc.Function{}, false
		}
		samples[i] = p
		times[i] = ti
	}

	dt := times[n-1].Sub(times[0]).Seconds()
	if dt <= 0 {
		return tfunc.Function{}, false
	}
	vx := (samples[n-1].X - samples[0].X) / dt
	vy := (samples[n-1].Y - samples[0].Y) / dt

	devs := make([]float64, 0, n*2)
	for i, s := range samples {
		elapsed := times[i].Sub(times[0]).Seconds()
		predicted := point.Point{X: samples[0].X + vx*elapsed, Y: samples[0].Y + vy*elapsed}
		devs = append(devs, math.Abs(s.X-predicted.X), math.Abs(s.Y-predicted.Y))
	}
	if floats.Max(devs) > tolerance {
		return tfunc.Function{}, false
	}

	return tfunc.NewLinear(samples[0], times[0], vx, vy), true
}
