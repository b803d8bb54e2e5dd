// Package coord converts between Cartesian and geographic coordinates: a
// local equirectangular approximation anchored at an origin (lat0, lon0),
// plus haversine distance between geographic pairs.
package coord

import (
	"math"

	"github.com/deltapolygon/deltapolygon/point"
)

// EarthRadiusMeters is the Earth radius used by the local equirectangular
// approximation (WGS-84 equatorial radius).
const EarthRadiusMeters = 6378137.0

// GeoPoint is a latitude/longitude pair in degrees.
type GeoPoint struct {
	LatDeg, LonDeg float64
}

// Origin anchors the local equirectangular projection used to convert
// between GeoPoint and Cartesian point.Point.
type Origin struct {
	LatDeg, LonDeg float64
}

// ToCartesian projects g relative to o: dLatRad = (g.lat - o.lat) in
// radians maps to y = dLatRad * R; dLonRad maps to x = dLonRad * R *
// cos(o.lat).
func (o Origin) ToCartesian(g GeoPoint) point.Point {
	latRad0 := radians(o.LatDeg)
	dLatRad := radians(g.LatDeg - o.LatDeg)
	dLonRad := radians(g.LonDeg - o.LonDeg)
	return point.Point{
		X: dLonRad * EarthRadiusMeters * math.Cos(latRad0),
		Y: dLatRad * EarthRadiusMeters,
	}
}

// ToGeo inverts ToCartesian: given a Cartesian point relative to o, returns
// the GeoPoint it represents.
func (o Origin) ToGeo(p point.Point) GeoPoint {
	latRad0 := radians(o.LatDeg)
	dLatRad := p.Y / EarthRadiusMeters
	dLonRad := p.X / (EarthRadiusMeters * math.Cos(latRad0))
	return GeoPoint{
		LatDeg: o.LatDeg + degrees(dLatRad),
		LonDeg: o.LonDeg + degrees(dLonRad),
	}
}

// HaversineDistance returns the great-circle distance in meters between
// two geographic points.
func HaversineDistance(a, b GeoPoint) float64 {
	latA, latB := radians(a.LatDeg), radians(b.LatDeg)
	dLat := latB - latA
	dLon := radians(b.LonDeg - a.LonDeg)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(latA)*math.Cos(latB)*sinLon*sinLon
	return 2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }
