package vstate

import (
	"errors"
	"time"

	"github.com/deltapolygon/deltapolygon/point"
)

// ErrNotFunction is returned by FunctionPositionAt when called on a
// non-Function state.
var ErrNotFunction = errors.New("vstate: state is not a function state")

// FunctionPositionAt evaluates s.Fn at t, for callers outside the normal
// find-state-then-resolve path (e.g. direct inspection tooling): it
// returns ErrTimeOutOfRange rather than silently extrapolating past the
// state's own interval.
func (s State) FunctionPositionAt(t time.Time) (point.Point, error) {
	if s.Flavor != FlavorFunction {
		return point.Point{}, ErrNotFunction
	}
	if !s.Interval.Contains(t) {
		return point.Point{}, ErrTimeOutOfRange
	}
	return s.Fn.PositionAt(t), nil
}
