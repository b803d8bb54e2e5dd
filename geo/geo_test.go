package geo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deltapolygon/deltapolygon/geo"
	"github.com/deltapolygon/deltapolygon/point"
)

func square() []point.Point {
	return []point.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
}

func TestValidateAcceptsSquare(t *testing.T) {
	require.NoError(t, geo.Validate(square()))
}

func TestValidateRejectsTooFewVertices(t *testing.T) {
	err := geo.Validate([]point.Point{{X: 0, Y: 0}, {X: 1, Y: 1}})
	require.Error(t, err)
}

func TestValidateRejectsCollinearTriple(t *testing.T) {
	pts := []point.Point{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 10, Y: 0}, {X: 5, Y: 10}}
	err := geo.Validate(pts)
	var invalid *geo.ErrInvalidPolygon
	require.ErrorAs(t, err, &invalid)
}

func TestValidateRejectsSelfIntersectingBowtie(t *testing.T) {
	pts := []point.Point{{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 10}}
	err := geo.Validate(pts)
	var invalid *geo.ErrInvalidPolygon
	require.ErrorAs(t, err, &invalid)
}

func TestSignedAreaSquare(t *testing.T) {
	require.Equal(t, 100.0, geo.SignedArea(square()))
}

func TestPerimeterSquare(t *testing.T) {
	require.InDelta(t, 40.0, geo.Perimeter(square()), 1e-9)
}

func TestCentroidSquare(t *testing.T) {
	c, err := geo.Centroid(square())
	require.NoError(t, err)
	require.InDelta(t, 5.0, c.X, 1e-9)
	require.InDelta(t, 5.0, c.Y, 1e-9)
}

func TestBoundsSquare(t *testing.T) {
	bb := geo.Bounds(square())
	require.Equal(t, geo.BoundingBox{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}, bb)
}

func TestContainsPoint(t *testing.T) {
	sq := square()
	require.True(t, geo.ContainsPoint(sq, point.Point{X: 5, Y: 5}))
	require.False(t, geo.ContainsPoint(sq, point.Point{X: 20, Y: 20}))
}
