package vertex_test

import (
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/deltapolygon/deltapolygon/point"
	"github.com/deltapolygon/deltapolygon/vertex"
	"github.com/deltapolygon/deltapolygon/vstate"
)

// an update_vertex with an Absolute state must read back exactly, for any
// point and any later query time.
func TestPropertyPositionAtAbsoluteIsExact(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		x := rapid.Float64Range(-1e6, 1e6).Draw(rt, "x")
		y := rapid.Float64Range(-1e6, 1e6).Draw(rt, "y")
		laterSeconds := rapid.IntRange(0, 3600).Draw(rt, "later")

		t0 := time.Now()
		v := vertex.NewWithInitialState(0, vstate.NewAbsolute(point.Point{X: x, Y: y}, point.Open(t0)))

		got, err := v.PositionAt(t0.Add(time.Duration(laterSeconds) * time.Second))
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}
		if got != (point.Point{X: x, Y: y}) {
			rt.Fatalf("got %+v, want {%v %v}", got, x, y)
		}
	})
}

// appending states with AddState always leaves the history's intervals
// abutting: every non-last state's End equals the following state's Start.
func TestPropertyAddStateKeepsIntervalsContiguous(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(rt, "n")
		t0 := time.Now()
		v := vertex.NewWithInitialState(0, vstate.NewAbsolute(point.Point{}, point.Open(t0)))

		cursor := t0
		for i := 0; i < n; i++ {
			stepMinutes := rapid.IntRange(1, 120).Draw(rt, "step")
			cursor = cursor.Add(time.Duration(stepMinutes) * time.Minute)
			dx := rapid.Float64Range(-100, 100).Draw(rt, "dx")
			dy := rapid.Float64Range(-100, 100).Draw(rt, "dy")
			v.AddState(vstate.NewDelta(dx, dy, point.Open(cursor)))
		}

		states := v.States()
		for i := 0; i < len(states)-1; i++ {
			if states[i].Interval.End == nil {
				rt.Fatalf("state %d should have been closed by the next AddState", i)
			}
			if !states[i].Interval.End.Equal(states[i+1].Interval.Start) {
				rt.Fatalf("gap between state %d end and state %d start", i, i+1)
			}
		}
		if !states[len(states)-1].Interval.IsOpenEnded() {
			rt.Fatalf("last state should remain open-ended")
		}
	})
}
