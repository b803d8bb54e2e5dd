// Package geo implements the geometric validation and measurement used at
// polygon creation time and by the service facade: signed area,
// perimeter, centroid, bounding box, point containment, vertex
// orientation, and pairwise non-adjacent segment intersection.
package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/dominikbraun/graph"

	"github.com/deltapolygon/deltapolygon/point"
)

// collinearAreaEpsilon is the minimum triangle area (in squared coordinate
// units) below which three consecutive vertices are treated as collinear.
const collinearAreaEpsilon = 1e-10

// ErrInvalidPolygon is returned when a polygon fails geometric validation;
// Reasons holds one entry per failed check (the first collinear triple
// and/or the first self-intersecting edge pair), not just the first check
// that failed.
type ErrInvalidPolygon struct {
	Reasons []string
}

func (e *ErrInvalidPolygon) Error() string {
	return fmt.Sprintf("geo: invalid polygon: %v", e.Reasons)
}

// Validate runs every geometric validity check against pts (a
// reconstruction at polygon-creation time) and returns an
// *ErrInvalidPolygon aggregating every failure, or nil if pts describes a
// valid simple polygon.
func Validate(pts []point.Point) error {
	var reasons []string
	if len(pts) < 3 {
		reasons = append(reasons, "fewer than 3 vertices")
		return &ErrInvalidPolygon{Reasons: reasons}
	}
	if i, ok := firstCollinearTriple(pts); ok {
		reasons = append(reasons, fmt.Sprintf("consecutive collinear triple at vertex %d", i))
	}
	if i, j, ok := firstSelfIntersection(pts); ok {
		reasons = append(reasons, fmt.Sprintf("self-intersection between edges %d and %d", i, j))
	}
	if len(reasons) > 0 {
		return &ErrInvalidPolygon{Reasons: reasons}
	}
	return nil
}

func firstCollinearTriple(pts []point.Point) (int, bool) {
	n := len(pts)
	for i := 0; i < n; i++ {
		a, b, c := pts[i], pts[(i+1)%n], pts[(i+2)%n]
		if triangleArea(a, b, c) < collinearAreaEpsilon {
			return i, true
		}
	}
	return 0, false
}

func triangleArea(a, b, c point.Point) float64 {
	cross := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	if cross < 0 {
		cross = -cross
	}
	return 0.5 * cross
}

// firstSelfIntersection tests every pair of non-adjacent edges for
// intersection, returning the first offending pair of edge indices.
// Adjacency between edge indices is answered by a directed cycle graph
// over the edge indices rather than modular arithmetic, so the notion of
// "shares a vertex with" stays expressed as a graph query as the polygon's
// edge count grows.
func firstSelfIntersection(pts []point.Point) (int, int, bool) {
	n := len(pts)
	adj := edgeAdjacency(n)
	for i := 0; i < n; i++ {
		a1, a2 := pts[i], pts[(i+1)%n]
		for j := i + 1; j < n; j++ {
			if adj[i][j] {
				continue
			}
			b1, b2 := pts[j], pts[(j+1)%n]
			if segmentsIntersect(a1, a2, b1, b2) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

// edgeAdjacency builds a directed cycle graph.Graph[int,int] over edge
// indices [0,n) (edge i points to its successor i+1 mod n) and derives the
// symmetric "shares an endpoint" relation from its adjacency map: two edge
// indices are adjacent iff one is the other's predecessor or successor, or
// they are the same edge.
func edgeAdjacency(n int) [][]bool {
	gr := graph.New(func(i int) int { return i }, graph.Directed())
	for i := 0; i < n; i++ {
		_ = gr.AddVertex(i)
	}
	for i := 0; i < n; i++ {
		_ = gr.AddEdge(i, (i+1)%n)
	}
	adjMap, err := gr.AdjacencyMap()
	if err != nil {
		panic(err)
	}

	adj := make([][]bool, n)
	for i := range adj {
		adj[i] = make([]bool, n)
		adj[i][i] = true
	}
	for from, edges := range adjMap {
		for to := range edges {
			adj[from][to] = true
			adj[to][from] = true
		}
	}
	return adj
}

func segmentsIntersect(p1, p2, p3, p4 point.Point) bool {
	d1 := orientation(p3, p4, p1)
	d2 := orientation(p3, p4, p2)
	d3 := orientation(p1, p2, p3)
	d4 := orientation(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	if d1 == 0 && onSegment(p3, p4, p1) {
		return true
	}
	if d2 == 0 && onSegment(p3, p4, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, p3) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, p4) {
		return true
	}
	return false
}

// orientation returns the signed cross product (b-a) x (c-a): positive for
// counter-clockwise, negative for clockwise, zero for collinear.
func orientation(a, b, c point.Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func onSegment(a, b, p point.Point) bool {
	return p.X >= math.Min(a.X, b.X) && p.X <= math.Max(a.X, b.X) &&
		p.Y >= math.Min(a.Y, b.Y) && p.Y <= math.Max(a.Y, b.Y)
}

// SignedArea returns the shoelace signed area of pts: positive for
// counter-clockwise winding, negative for clockwise.
func SignedArea(pts []point.Point) float64 {
	n := len(pts)
	var sum float64
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

// Perimeter returns the sum of edge lengths of the closed ring pts.
func Perimeter(pts []point.Point) float64 {
	n := len(pts)
	var total float64
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%n]
		total += distance(a, b)
	}
	return total
}

func distance(a, b point.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Centroid returns the area-weighted centroid of the closed ring pts.
// Returns an error if pts is degenerate (zero area).
func Centroid(pts []point.Point) (point.Point, error) {
	area := SignedArea(pts)
	if area == 0 {
		return point.Point{}, errors.New("geo: degenerate polygon, zero area")
	}
	var cx, cy float64
	n := len(pts)
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%n]
		cross := a.X*b.Y - b.X*a.Y
		cx += (a.X + b.X) * cross
		cy += (a.Y + b.Y) * cross
	}
	factor := 1 / (6 * area)
	return point.Point{X: cx * factor, Y: cy * factor}, nil
}

// BoundingBox is the axis-aligned box enclosing a point set.
type BoundingBox struct {
	MinX, MinY, MaxX, MaxY float64
}

// Bounds computes the bounding box of pts. Panics if pts is empty.
func Bounds(pts []point.Point) BoundingBox {
	bb := BoundingBox{MinX: pts[0].X, MaxX: pts[0].X, MinY: pts[0].Y, MaxY: pts[0].Y}
	for _, p := range pts[1:] {
		bb.MinX = math.Min(bb.MinX, p.X)
		bb.MaxX = math.Max(bb.MaxX, p.X)
		bb.MinY = math.Min(bb.MinY, p.Y)
		bb.MaxY = math.Max(bb.MaxY, p.Y)
	}
	return bb
}

// ContainsPoint reports whether q lies inside the closed ring pts, using a
// standard ray-casting parity test.
func ContainsPoint(pts []point.Point, q point.Point) bool {
	n := len(pts)
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := pts[i], pts[j]
		intersects := (pi.Y > q.Y) != (pj.Y > q.Y) &&
			q.X < (pj.X-pi.X)*(q.Y-pi.Y)/(pj.Y-pi.Y)+pi.X
		if intersects {
			inside = !inside
		}
	}
	return inside
}
