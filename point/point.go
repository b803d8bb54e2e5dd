// Package point defines the value types shared by the temporal store: a
// 2D point and a half-open time interval.
package point

import (
	"time"

	"github.com/deltapolygon/deltapolygon/util"
)

// Point is a value-equal, additive pair of Cartesian or local-geographic
// coordinates, depending on the owning polygon's coordinate system.
type Point struct {
	X, Y float64
}

// Add returns the point translated by (dx, dy).
func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the delta from other to p.
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

// Interval is a half-open time interval [Start, End). A nil End means the
// interval is open-ended — it extends indefinitely into the future.
type Interval struct {
	Start time.Time
	End   *time.Time
}

// Open returns an interval [start, +inf).
func Open(start time.Time) Interval {
	return Interval{Start: start}
}

// Closed returns an interval [start, end). It panics if end <= start; callers
// that cannot guarantee end > start should use NewClosed instead.
func Closed(start, end time.Time) Interval {
	iv, err := NewClosed(start, end)
	util.AssertNoError(err)
	return iv
}

// NewClosed returns the interval [start, end), or ErrInvalidInterval if end
// does not come after start.
func NewClosed(start, end time.Time) (Interval, error) {
	if !end.After(start) {
		return Interval{}, ErrInvalidInterval
	}
	return Interval{Start: start, End: &end}, nil
}

// IsOpenEnded reports whether the interval has no End.
func (iv Interval) IsOpenEnded() bool {
	return iv.End == nil
}

// Contains reports whether t falls in [Start, End).
func (iv Interval) Contains(t time.Time) bool {
	if t.Before(iv.Start) {
		return false
	}
	if iv.End == nil {
		return true
	}
	return t.Before(*iv.End)
}

// Intersects reports whether the interval [iv.Start, iv.End) intersects the
// closed range [t1, t2]: start <= t2 && (end is open || end >= t1).
func (iv Interval) Intersects(t1, t2 time.Time) bool {
	if iv.Start.After(t2) {
		return false
	}
	if iv.End == nil {
		return true
	}
	return !iv.End.Before(t1)
}

// Equal reports whether iv and other have the same start and the same
// end (both open, or both closed at the same instant).
func (iv Interval) Equal(other Interval) bool {
	if !iv.Start.Equal(other.Start) {
		return false
	}
	if iv.End == nil || other.End == nil {
		return iv.End == nil && other.End == nil
	}
	return iv.End.Equal(*other.End)
}

// WithEnd returns a copy of iv closed at end.
func (iv Interval) WithEnd(end time.Time) Interval {
	e := end
	return Interval{Start: iv.Start, End: &e}
}
