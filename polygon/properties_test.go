package polygon_test

import (
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/deltapolygon/deltapolygon/point"
	"github.com/deltapolygon/deltapolygon/polygon"
	"github.com/deltapolygon/deltapolygon/vertex"
	"github.com/deltapolygon/deltapolygon/vstate"
)

// ReconstructAt always returns exactly one point per topology vertex, in
// topology order, for any vertex count >= 3 and any query time within the
// open-ended initial interval.
func TestPropertyReconstructAtLengthMatchesTopology(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(3, 12).Draw(rt, "n")
		t0 := time.Now()

		ids := make([]int, n)
		vertices := make(map[int]*vertex.Vertex, n)
		for i := 0; i < n; i++ {
			ids[i] = i
			x := rapid.Float64Range(-1000, 1000).Draw(rt, "x")
			y := rapid.Float64Range(-1000, 1000).Draw(rt, "y")
			vertices[i] = vertex.NewWithInitialState(i, vstate.NewAbsolute(point.Point{X: x, Y: y}, point.Open(t0)))
		}

		p, err := polygon.New(ids, vertices, polygon.Cartesian)
		if err != nil {
			rt.Fatalf("New: %v", err)
		}

		laterMinutes := rapid.IntRange(0, 600).Draw(rt, "later")
		pts, err := p.ReconstructAt(t0.Add(time.Duration(laterMinutes) * time.Minute))
		if err != nil {
			rt.Fatalf("ReconstructAt: %v", err)
		}
		if len(pts) != n {
			rt.Fatalf("got %d points, want %d", len(pts), n)
		}
	})
}
