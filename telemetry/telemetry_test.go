package telemetry_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deltapolygon/deltapolygon/telemetry"
)

func TestTracefIsNoOpUntilTagEnabled(t *testing.T) {
	log := telemetry.NewNop()
	require.NotPanics(t, func() { log.Tracef("cache", "eviction of %d entries", 3) })

	log.EnableTrace("cache")
	require.NotPanics(t, func() { log.Tracef("cache,precompute", "sweep done") })
}

func TestStopCancelsCtx(t *testing.T) {
	log := telemetry.NewNop()
	ctx := log.Ctx()

	select {
	case <-ctx.Done():
		t.Fatal("context canceled before Stop")
	default:
	}

	log.Stop()
	<-ctx.Done()
	log.Stop()
}
