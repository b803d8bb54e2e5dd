// Package tfunc implements the parametric position-vs-time functions a
// vertex state may carry: Linear, Circular, and an Opaque escape hatch
// for closures that cannot be serialized.
package tfunc

import (
	"math"
	"time"

	"github.com/deltapolygon/deltapolygon/point"
)

// Kind tags which variant a Function holds.
type Kind int

const (
	KindLinear Kind = iota
	KindCircular
	KindOpaque
)

func (k Kind) String() string {
	switch k {
	case KindLinear:
		return "Linear"
	case KindCircular:
		return "Circular"
	case KindOpaque:
		return "Opaque"
	default:
		return "Unknown"
	}
}

// OpaqueEval is the pair of closures an Opaque function carries. It is
// never marshaled: Opaque variants are not serializable, and a
// deserialized opaque slot falls back to the absolute position stored
// alongside.
type OpaqueEval struct {
	FX func(t time.Time) float64
	FY func(t time.Time) float64
}

// Function is a tagged variant over Linear, Circular, and Opaque temporal
// functions, all anchored on a reference point and time t0.
type Function struct {
	Kind Kind

	RefPoint point.Point
	T0       time.Time

	// Linear
	VX, VY float64

	// Circular
	Center Point2
	Radius float64
	Omega  float64
	Phi    float64

	// Opaque
	opaque OpaqueEval
	// FallbackPoint is the absolute position recorded alongside an Opaque
	// function so a deserialized instance still resolves to something.
	FallbackPoint point.Point
}

// Point2 is an alias of point.Point, used for the circular center.
type Point2 = point.Point

// NewLinear builds a Linear temporal function: position(t) = refPoint +
// (t-t0)*(vx, vy).
func NewLinear(refPoint point.Point, t0 time.Time, vx, vy float64) Function {
	return Function{Kind: KindLinear, RefPoint: refPoint, T0: t0, VX: vx, VY: vy}
}

// NewCircular builds a Circular temporal function: position(t) orbits
// center at radius, angular velocity omega, phase phi, anchored at t0.
func NewCircular(center point.Point, t0 time.Time, radius, omega, phi float64) Function {
	return Function{Kind: KindCircular, Center: center, T0: t0, Radius: radius, Omega: omega, Phi: phi}
}

// NewOpaque builds an Opaque temporal function from captured closures, with
// a fallback absolute position used on deserialization.
func NewOpaque(refPoint point.Point, t0 time.Time, eval OpaqueEval, fallback point.Point) Function {
	return Function{Kind: KindOpaque, RefPoint: refPoint, T0: t0, opaque: eval, FallbackPoint: fallback}
}

// PositionAt evaluates the function at time t. For Opaque functions with no
// captured closures (e.g. freshly deserialized), it returns FallbackPoint.
func (f Function) PositionAt(t time.Time) point.Point {
	switch f.Kind {
	case KindLinear:
		dt := t.Sub(f.T0).Seconds()
		return point.Point{X: f.RefPoint.X + f.VX*dt, Y: f.RefPoint.Y + f.VY*dt}
	case KindCircular:
		dt := t.Sub(f.T0).Seconds()
		angle := f.Phi + f.Omega*dt
		return point.Point{
			X: f.Center.X + f.Radius*math.Cos(angle),
			Y: f.Center.Y + f.Radius*math.Sin(angle),
		}
	case KindOpaque:
		if f.opaque.FX != nil && f.opaque.FY != nil {
			return point.Point{X: f.opaque.FX(t), Y: f.opaque.FY(t)}
		}
		return f.FallbackPoint
	default:
		panic("tfunc: unknown function kind")
	}
}

// IsSerializable reports whether the function can round-trip through the
// JSON codec with full fidelity (Opaque cannot — it degrades to its
// fallback absolute point).
func (f Function) IsSerializable() bool {
	return f.Kind != KindOpaque
}
