package geojson_test

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/deltapolygon/deltapolygon/geojson"
	"github.com/deltapolygon/deltapolygon/point"
)

// NewGeometry always closes its ring: the output has exactly one more
// coordinate than the input, and the first and last coordinates match, for
// any set of >=3 distinct input points.
func TestPropertyGeometryRingClosesWithNPlusOne(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(3, 15).Draw(rt, "n")
		pts := make([]point.Point, n)
		for i := 0; i < n; i++ {
			// walk along a line with a per-step jitter so points are
			// pairwise distinct without needing a uniqueness filter.
			pts[i] = point.Point{X: float64(i), Y: rapid.Float64Range(-1, 1).Draw(rt, "y")}
		}

		geom, err := geojson.NewGeometry(pts)
		if err != nil {
			rt.Fatalf("NewGeometry: %v", err)
		}
		ring := geom.Coordinates[0]
		if len(ring) != n+1 {
			rt.Fatalf("got %d coordinates, want %d", len(ring), n+1)
		}
		if ring[0] != ring[len(ring)-1] {
			rt.Fatalf("ring not closed: first %v last %v", ring[0], ring[len(ring)-1])
		}
	})
}
