package config_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deltapolygon/deltapolygon/config"
)

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
}

func TestLoadRespectsEnvironmentOverride(t *testing.T) {
	t.Setenv("DELTAPOLYGON_LRU_CAPACITY", "250")
	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, 250, cfg.LRUCapacity)
}

func TestWriteDefaultProducesALoadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deltapolygon.yaml")
	require.NoError(t, config.WriteDefault(path))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, config.Default().LRUCapacity, cfg.LRUCapacity)
	require.Equal(t, config.Default().DeltaThreshold, cfg.DeltaThreshold)
}
