// Package geojson implements GeoJSON emission: a reconstruction becomes
// a Polygon geometry with a single closed linear ring, optionally wrapped
// in a Feature or a FeatureCollection for multiple (polygon, time) pairs.
package geojson

import (
	"errors"

	"github.com/google/uuid"

	"github.com/deltapolygon/deltapolygon/point"
)

// ErrTooFewPoints is returned when a reconstruction has fewer than three
// distinct points.
var ErrTooFewPoints = errors.New("geojson: reconstruction has fewer than 3 distinct points")

// Geometry is a bare GeoJSON Polygon geometry.
type Geometry struct {
	Type        string        `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

// Feature wraps a Geometry with identifying properties.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// FeatureCollection wraps multiple Features.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

func ring(pts []point.Point) ([][2]float64, error) {
	if countDistinct(pts) < 3 {
		return nil, ErrTooFewPoints
	}
	out := make([][2]float64, len(pts)+1)
	for i, p := range pts {
		out[i] = [2]float64{p.X, p.Y}
	}
	out[len(pts)] = out[0]
	return out, nil
}

func countDistinct(pts []point.Point) int {
	seen := make(map[point.Point]struct{}, len(pts))
	for _, p := range pts {
		seen[p] = struct{}{}
	}
	return len(seen)
}

// NewGeometry builds a bare Polygon geometry from a reconstruction.
func NewGeometry(pts []point.Point) (Geometry, error) {
	r, err := ring(pts)
	if err != nil {
		return Geometry{}, err
	}
	return Geometry{Type: "Polygon", Coordinates: [][][2]float64{r}}, nil
}

// NewFeature wraps a reconstruction's geometry with polygon/time properties.
func NewFeature(pid uuid.UUID, t any, pts []point.Point) (Feature, error) {
	g, err := NewGeometry(pts)
	if err != nil {
		return Feature{}, err
	}
	return Feature{
		Type:     "Feature",
		Geometry: g,
		Properties: map[string]any{
			"polygonId": pid.String(),
			"time":      t,
		},
	}, nil
}

// Pair is one (polygon, time, reconstruction) input to NewFeatureCollection.
type Pair struct {
	PolygonID uuid.UUID
	Time      any
	Points    []point.Point
}

// NewFeatureCollection builds a FeatureCollection from multiple (polygon,
// time) reconstructions, skipping any pair with fewer than three distinct
// points.
func NewFeatureCollection(pairs []Pair) FeatureCollection {
	fc := FeatureCollection{Type: "FeatureCollection"}
	for _, p := range pairs {
		f, err := NewFeature(p.PolygonID, p.Time, p.Points)
		if err != nil {
			continue
		}
		fc.Features = append(fc.Features, f)
	}
	return fc
}
