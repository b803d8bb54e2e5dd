// Package polygon implements TemporalPolygon: a fixed sequence of vertex
// ids (the topology, immutable after creation) over a map of time-varying
// Vertex histories, plus whole-polygon reconstruction at an instant.
package polygon

import (
	"errors"
	"time"

	"github.com/deltapolygon/deltapolygon/point"
	"github.com/deltapolygon/deltapolygon/vertex"
	"github.com/google/uuid"
)

// CoordSystem distinguishes a polygon's coordinate interpretation —
// Cartesian meters, or a local-geographic (lat/lon-derived) system
// requiring the coord package's conversion before mapping/GeoJSON use.
type CoordSystem int

const (
	Cartesian CoordSystem = iota
	Geographic
)

func (c CoordSystem) String() string {
	if c == Geographic {
		return "Geographic"
	}
	return "Cartesian"
}

// ErrTooFewVertices means a polygon was given fewer than three vertices,
// which cannot enclose an area.
var ErrTooFewVertices = errors.New("polygon: fewer than 3 vertices")

// ErrVertexIDMismatch means vertexIDs and the vertices map disagree about
// which vertex ids make up the polygon.
var ErrVertexIDMismatch = errors.New("polygon: vertex_ids and vertices map disagree")

// TemporalPolygon is immutable in topology: VertexIDs never changes after
// New returns. Only the Vertex histories referenced by Vertices mutate,
// each under its own lock (vertex.Vertex).
type TemporalPolygon struct {
	ID          uuid.UUID
	VertexIDs   []int
	Vertices    map[int]*vertex.Vertex
	CoordSystem CoordSystem
}

// New validates the topology and returns a TemporalPolygon. vertexIDs
// defines iteration order; vertices must have exactly the same key set
// and at least three entries.
func New(vertexIDs []int, vertices map[int]*vertex.Vertex, cs CoordSystem) (*TemporalPolygon, error) {
	if len(vertexIDs) < 3 {
		return nil, ErrTooFewVertices
	}
	if len(vertices) != len(vertexIDs) {
		return nil, ErrVertexIDMismatch
	}
	seen := make(map[int]bool, len(vertexIDs))
	for _, id := range vertexIDs {
		if seen[id] {
			return nil, ErrVertexIDMismatch
		}
		seen[id] = true
		if _, ok := vertices[id]; !ok {
			return nil, ErrVertexIDMismatch
		}
	}
	ids := make([]int, len(vertexIDs))
	copy(ids, vertexIDs)
	return &TemporalPolygon{
		ID:          uuid.New(),
		VertexIDs:   ids,
		Vertices:    vertices,
		CoordSystem: cs,
	}, nil
}

// ReconstructAt resolves every vertex, in topology order, at time t. It
// fails with the first vertex.ErrMissingState encountered. The returned
// slice is never closed (first point not duplicated at the end) — GeoJSON
// emission handles that.
func (p *TemporalPolygon) ReconstructAt(t time.Time) ([]point.Point, error) {
	out := make([]point.Point, len(p.VertexIDs))
	for i, id := range p.VertexIDs {
		pos, err := p.Vertices[id].PositionAt(t)
		if err != nil {
			return nil, err
		}
		out[i] = pos
	}
	return out, nil
}

// NumVertices returns the fixed vertex count (|vertex_ids|).
func (p *TemporalPolygon) NumVertices() int {
	return len(p.VertexIDs)
}
