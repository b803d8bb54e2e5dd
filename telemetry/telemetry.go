// Package telemetry bootstraps structured logging and metrics for the
// store: a zap.SugaredLogger built over viper config, with log level and
// output sink read from viper keys under "logger.*", a context/cancel
// pair for coordinating shutdown of background work (precomputation
// sweeps, cache warmers), trace-tag gated debug logging, and a small set
// of prometheus counters tracking service activity.
package telemetry

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap.SugaredLogger with a cancelable context and
// trace-tag gated logging, the way global.Global does for the ledger.
type Logger struct {
	*zap.SugaredLogger
	ctx     context.Context
	cancel  context.CancelFunc
	stopped sync.Once

	enabledTrace atomic.Bool
	traceMu      sync.RWMutex
	traceTags    map[string]struct{}
}

// NewFromConfig builds a Logger from viper keys "logger.level" (a zapcore
// level name, default "info") and "logger.output" (an additional sink
// appended to stderr, default none).
func NewFromConfig(v *viper.Viper) (*Logger, error) {
	lvl := zapcore.InfoLevel
	if s := v.GetString("logger.level"); s != "" {
		parsed, err := zapcore.ParseLevel(s)
		if err != nil {
			return nil, err
		}
		lvl = parsed
	}

	outputs := []string{"stderr"}
	if out := v.GetString("logger.output"); out != "" {
		outputs = append(outputs, out)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = outputs
	cfg.Encoding = "console"
	cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()

	base, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return newLogger(base.Sugar()), nil
}

// NewNop returns a Logger that discards everything, for tests and default
// construction.
func NewNop() *Logger {
	return newLogger(zap.NewNop().Sugar())
}

func newLogger(base *zap.SugaredLogger) *Logger {
	ctx, cancel := context.WithCancel(context.Background())
	return &Logger{
		SugaredLogger: base,
		ctx:           ctx,
		cancel:        cancel,
		traceTags:     make(map[string]struct{}),
	}
}

// Ctx returns the context background work should observe for cancellation.
func (l *Logger) Ctx() context.Context {
	return l.ctx
}

// Stop cancels Ctx, signaling any background work (precomputation
// sweeps, cache warmers) started against it to wind down. Safe to call
// more than once.
func (l *Logger) Stop() {
	l.stopped.Do(l.cancel)
}

// EnableTrace turns on trace logging and registers the tags that should
// be emitted; Tracef calls with a tag not in this set are no-ops.
func (l *Logger) EnableTrace(tags ...string) {
	l.traceMu.Lock()
	defer l.traceMu.Unlock()
	for _, t := range tags {
		l.traceTags[t] = struct{}{}
	}
	l.enabledTrace.Store(true)
}

// Tracef logs format/args at info level if tag (or any one of a
// comma-separated list of tags) is registered via EnableTrace; otherwise
// it is a no-op, so call sites can leave Tracef calls in place without
// runtime cost when tracing is off.
func (l *Logger) Tracef(tag string, format string, args ...any) {
	if !l.enabledTrace.Load() {
		return
	}
	l.traceMu.RLock()
	defer l.traceMu.RUnlock()
	for _, t := range strings.Split(tag, ",") {
		if _, ok := l.traceTags[t]; ok {
			l.Infof("TRACE(%s) %s", t, fmt.Sprintf(format, args...))
			return
		}
	}
}

// Metrics is the service facade's prometheus instrumentation: counts of
// mutating operations and reconstruction read-path outcomes.
type Metrics struct {
	VertexUpdates     prometheus.Counter
	PolygonsCreated   prometheus.Counter
	PolygonsRemoved   prometheus.Counter
	ReconstructHits   *prometheus.CounterVec
	ReconstructErrors prometheus.Counter
}

// NewMetrics registers the store's counters with reg. Passing
// prometheus.NewRegistry() keeps tests isolated from the global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		VertexUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "deltapolygon_vertex_updates_total",
			Help: "Number of vertex state updates applied.",
		}),
		PolygonsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "deltapolygon_polygons_created_total",
			Help: "Number of polygons created.",
		}),
		PolygonsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "deltapolygon_polygons_removed_total",
			Help: "Number of polygons removed.",
		}),
		ReconstructHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deltapolygon_reconstruct_source_total",
			Help: "Reconstruction read-path outcomes by source.",
		}, []string{"source"}),
		ReconstructErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "deltapolygon_reconstruct_errors_total",
			Help: "Reconstruction attempts that failed.",
		}),
	}
	reg.MustRegister(m.VertexUpdates, m.PolygonsCreated, m.PolygonsRemoved, m.ReconstructHits, m.ReconstructErrors)
	return m
}
