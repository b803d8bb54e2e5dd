package vstate_test

import (
	"testing"
	"time"

	"github.com/deltapolygon/deltapolygon/point"
	"github.com/deltapolygon/deltapolygon/tfunc"
	"github.com/deltapolygon/deltapolygon/vstate"
	"github.com/stretchr/testify/require"
)

func TestEquivalentAbsolute(t *testing.T) {
	t0 := time.Now()
	iv := point.Open(t0)
	a := vstate.NewAbsolute(point.Point{X: 1, Y: 2}, iv)
	b := vstate.NewAbsolute(point.Point{X: 1, Y: 2}, iv)
	c := vstate.NewAbsolute(point.Point{X: 1, Y: 3}, iv)

	require.True(t, vstate.Equivalent(a, b))
	require.False(t, vstate.Equivalent(a, c))
}

func TestEquivalentDelta(t *testing.T) {
	iv := point.Open(time.Now())
	a := vstate.NewDelta(1, 2, iv)
	b := vstate.NewDelta(1, 2, iv)
	c := vstate.NewDelta(1, 2.0001, iv)

	require.True(t, vstate.Equivalent(a, b))
	require.False(t, vstate.Equivalent(a, c))
}

func TestEquivalentFunctionsNeverEqual(t *testing.T) {
	iv := point.Open(time.Now())
	fn := tfunc.NewLinear(point.Point{}, time.Now(), 1, 1)
	a := vstate.NewFunction(fn, iv)
	b := vstate.NewFunction(fn, iv)

	require.False(t, vstate.Equivalent(a, b))
}

func TestEquivalentIgnoresGroupIDs(t *testing.T) {
	iv := point.Open(time.Now())
	a := vstate.NewDelta(1, 2, iv).WithGroup([]int{2, 3})
	b := vstate.NewDelta(1, 2, iv)

	require.True(t, vstate.Equivalent(a, b))
}

func TestEquivalentDifferentFlavor(t *testing.T) {
	iv := point.Open(time.Now())
	a := vstate.NewAbsolute(point.Point{X: 1, Y: 1}, iv)
	b := vstate.NewDelta(1, 1, iv)
	require.False(t, vstate.Equivalent(a, b))
}

func TestEquivalentDifferentInterval(t *testing.T) {
	t0 := time.Now()
	a := vstate.NewAbsolute(point.Point{X: 1, Y: 1}, point.Open(t0))
	b := vstate.NewAbsolute(point.Point{X: 1, Y: 1}, point.Open(t0.Add(time.Second)))
	require.False(t, vstate.Equivalent(a, b))
}
