// Package config loads service configuration with viper: bind defaults,
// read from file/env, parse into a struct. The "logger.*" keys are shared
// with the telemetry package's own config reader.
package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the service facade and its supporting
// components.
type Config struct {
	// LRUCapacity bounds the reconstruction cache. Must be > 0.
	LRUCapacity int `mapstructure:"lru_capacity" yaml:"lru_capacity"`

	// DeltaThreshold is the Chebyshev/L-infinity distance at or below which
	// UpdateVertex prefers a Delta state over an Absolute one.
	DeltaThreshold float64 `mapstructure:"delta_threshold" yaml:"delta_threshold"`

	// PrecomputeBatchSize caps how many marked times PrecomputeMarkedTimes
	// materializes per call.
	PrecomputeBatchSize int `mapstructure:"precompute_batch_size" yaml:"precompute_batch_size"`

	// LinearPatternTolerance is the per-axis deviation tolerance for
	// DetectLinearPattern.
	LinearPatternTolerance float64 `mapstructure:"linear_pattern_tolerance" yaml:"linear_pattern_tolerance"`

	// HistorySampleStep is the default step used by PolygonHistory when
	// the caller does not specify one.
	HistorySampleStep time.Duration `mapstructure:"history_sample_step" yaml:"history_sample_step"`

	LogLevel  string `mapstructure:"logger.level" yaml:"log_level"`
	LogOutput string `mapstructure:"logger.output" yaml:"log_output"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		LRUCapacity:            100,
		DeltaThreshold:         5.0,
		PrecomputeBatchSize:    64,
		LinearPatternTolerance: 1e-6,
		HistorySampleStep:      time.Minute,
		LogLevel:               "info",
	}
}

// Load builds a *viper.Viper seeded with Default's values, then merges in
// configPath (if non-empty) and the DELTAPOLYGON_-prefixed environment,
// returning the resolved Config.
func Load(configPath string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DELTAPOLYGON")
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("lru_capacity", def.LRUCapacity)
	v.SetDefault("delta_threshold", def.DeltaThreshold)
	v.SetDefault("precompute_batch_size", def.PrecomputeBatchSize)
	v.SetDefault("linear_pattern_tolerance", def.LinearPatternTolerance)
	v.SetDefault("history_sample_step", def.HistorySampleStep)
	v.SetDefault("logger.level", def.LogLevel)
	v.SetDefault("logger.output", def.LogOutput)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	cfg := Config{
		LRUCapacity:            v.GetInt("lru_capacity"),
		DeltaThreshold:         v.GetFloat64("delta_threshold"),
		PrecomputeBatchSize:    v.GetInt("precompute_batch_size"),
		LinearPatternTolerance: v.GetFloat64("linear_pattern_tolerance"),
		HistorySampleStep:      v.GetDuration("history_sample_step"),
		LogLevel:               v.GetString("logger.level"),
		LogOutput:              v.GetString("logger.output"),
	}
	return cfg, nil
}

// WriteDefault marshals Default() as YAML and writes it to path, for
// operators bootstrapping a config file to edit (polyctl config init).
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Viper exposes the viper instance underlying cfg's values, for components
// (like telemetry.NewFromConfig) that read their own keys directly. It is
// reconstructed here rather than threaded through Load's return, so each
// component reads only the viper keys it owns.
func Viper(configPath string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("DELTAPOLYGON")
	v.AutomaticEnv()
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output", "")
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	return v, nil
}
