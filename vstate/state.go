// Package vstate implements VertexState, the tagged variant recording one
// of three ways a vertex's position is known to be resolvable over a
// TimeInterval: an absolute anchor, a relative delta, or a closed-form
// temporal function.
package vstate

import (
	"errors"

	"github.com/deltapolygon/deltapolygon/point"
	"github.com/deltapolygon/deltapolygon/tfunc"
)

// Flavor tags which of the three VertexState variants a state is.
type Flavor int

const (
	FlavorAbsolute Flavor = iota
	FlavorDelta
	FlavorFunction
)

func (f Flavor) String() string {
	switch f {
	case FlavorAbsolute:
		return "Absolute"
	case FlavorDelta:
		return "Delta"
	case FlavorFunction:
		return "Function"
	default:
		return "Unknown"
	}
}

// ErrTimeOutOfRange is returned when evaluating a Function state at a
// time outside its interval.
var ErrTimeOutOfRange = errors.New("time outside function state's interval")

// State is one VertexState: a flavor, the interval it is valid over, and
// optional ids of vertices that moved together with this one (batch
// updates / identical-change grouping). GroupedVertexIDs is not part of
// state equivalence.
type State struct {
	Flavor   Flavor
	Interval point.Interval

	// Absolute
	Point point.Point

	// Delta
	DX, DY float64

	// Function
	Fn tfunc.Function

	GroupedVertexIDs []int
}

// NewAbsolute builds an Absolute state.
func NewAbsolute(p point.Point, iv point.Interval) State {
	return State{Flavor: FlavorAbsolute, Interval: iv, Point: p}
}

// NewDelta builds a Delta state.
func NewDelta(dx, dy float64, iv point.Interval) State {
	return State{Flavor: FlavorDelta, Interval: iv, DX: dx, DY: dy}
}

// NewFunction builds a Function state.
func NewFunction(fn tfunc.Function, iv point.Interval) State {
	return State{Flavor: FlavorFunction, Interval: iv, Fn: fn}
}

// WithGroup returns a copy of s carrying groupedVertexIDs.
func (s State) WithGroup(groupedVertexIDs []int) State {
	s.GroupedVertexIDs = groupedVertexIDs
	return s
}

// Delta returns the (dx, dy) pair of a Delta state as a point.
func (s State) Delta() point.Point {
	return point.Point{X: s.DX, Y: s.DY}
}

// Equivalent is the equivalence predicate used for identical-change
// grouping: same flavor, same interval, and same absolute point / same
// delta. Functions are never equivalent to one another (or themselves)
// because two functions may look alike numerically yet encode unrelated
// motion. GroupedVertexIDs is explicitly excluded from the comparison.
func Equivalent(a, b State) bool {
	if a.Flavor != b.Flavor {
		return false
	}
	if !a.Interval.Equal(b.Interval) {
		return false
	}
	switch a.Flavor {
	case FlavorAbsolute:
		return a.Point == b.Point
	case FlavorDelta:
		return a.DX == b.DX && a.DY == b.DY
	case FlavorFunction:
		return false
	default:
		return false
	}
}
