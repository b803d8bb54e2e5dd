// Package query implements existence checks over a polygon's full vertex
// set, change-time enumeration, and history sampling built on top of
// polygon.ReconstructAt.
package query

import (
	"sort"
	"time"

	"github.com/deltapolygon/deltapolygon/point"
	"github.com/deltapolygon/deltapolygon/polygon"
)

// ExistsAt reports whether every vertex of p resolves at t.
func ExistsAt(p *polygon.TemporalPolygon, t time.Time) bool {
	for _, id := range p.VertexIDs {
		if _, err := p.Vertices[id].PositionAt(t); err != nil {
			return false
		}
	}
	return true
}

// ExistsInRange reports whether every vertex has at least one state whose
// interval intersects [t1, t2]: a state [s, e) intersects iff s <= t2 and
// (e is open-ended or e >= t1).
func ExistsInRange(p *polygon.TemporalPolygon, t1, t2 time.Time) bool {
	for _, id := range p.VertexIDs {
		if !vertexHasStateIntersecting(p, id, t1, t2) {
			return false
		}
	}
	return true
}

func vertexHasStateIntersecting(p *polygon.TemporalPolygon, id int, t1, t2 time.Time) bool {
	for _, s := range p.Vertices[id].States() {
		if s.Interval.Intersects(t1, t2) {
			return true
		}
	}
	return false
}

// ExistsForEntireRange is the documented simplification: both endpoints
// must individually satisfy ExistsAt. It does not detect interior gaps.
func ExistsForEntireRange(p *polygon.TemporalPolygon, t1, t2 time.Time) bool {
	return ExistsAt(p, t1) && ExistsAt(p, t2)
}

// ChangeTimesInRange returns the sorted, deduplicated set containing t1,
// t2, and every interval start/end of every state of every vertex that
// falls within [t1, t2].
func ChangeTimesInRange(p *polygon.TemporalPolygon, t1, t2 time.Time) []time.Time {
	seen := make(map[int64]time.Time)
	add := func(t time.Time) {
		if t.Before(t1) || t.After(t2) {
			return
		}
		seen[t.UnixNano()] = t
	}
	add(t1)
	add(t2)
	for _, id := range p.VertexIDs {
		for _, s := range p.Vertices[id].States() {
			add(s.Interval.Start)
			if !s.Interval.IsOpenEnded() {
				add(*s.Interval.End)
			}
		}
	}

	out := make([]time.Time, 0, len(seen))
	for _, t := range seen {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Sample is one successfully reconstructed instant in a history query.
type Sample struct {
	Time   time.Time
	Points []point.Point
}

// History samples a polygon's reconstruction over [t1, t2]: if step is
// positive it samples at t1, t1+step, ... up to t2; otherwise (zero or
// negative) it samples at every time in ChangeTimesInRange. Instants where reconstruction
// fails are silently omitted.
func History(p *polygon.TemporalPolygon, t1, t2 time.Time, step time.Duration) []Sample {
	var times []time.Time
	if step > 0 {
		for t := t1; !t.After(t2); t = t.Add(step) {
			times = append(times, t)
		}
	} else {
		times = ChangeTimesInRange(p, t1, t2)
	}

	out := make([]Sample, 0, len(times))
	for _, t := range times {
		pts, err := p.ReconstructAt(t)
		if err != nil {
			continue
		}
		out = append(out, Sample{Time: t, Points: pts})
	}
	return out
}
