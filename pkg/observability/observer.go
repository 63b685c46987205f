package observability

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Git0Shuai/bevy/pkg/domain"
)

// Observer receives callbacks from the state engine for logging and metrics.
//
// Implementations should be fast and non-blocking; heavy work should be done
// asynchronously so as not to delay the tick loop.
type Observer interface {
	// OnPassStart is called at the beginning of a tick, before pending
	// requests are applied. pass is the 1-based number of the pass about
	// to run.
	OnPassStart(ctx context.Context, pass uint64)

	// OnTransition is called once per transition record produced by a pass,
	// in record order.
	OnTransition(ctx context.Context, tr domain.Transition)

	// OnPassCompleted is called after a pass and its callback phases have
	// finished. records is the number of transition records produced.
	OnPassCompleted(ctx context.Context, pass uint64, records int, duration time.Duration)

	// OnSystemRun is called after a gated system returns, for both
	// successes and failures (err != nil). Systems skipped by their run
	// conditions are not reported.
	OnSystemRun(ctx context.Context, name string, err error, duration time.Duration)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnPassStart(ctx context.Context, pass uint64)                           {}
func (NoopObserver) OnTransition(ctx context.Context, tr domain.Transition)                 {}
func (NoopObserver) OnPassCompleted(ctx context.Context, pass uint64, n int, d time.Duration) {
}
func (NoopObserver) OnSystemRun(ctx context.Context, name string, err error, d time.Duration) {
}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnPassStart(ctx context.Context, pass uint64) {
	for _, o := range c.observers {
		o.OnPassStart(ctx, pass)
	}
}

func (c *CompositeObserver) OnTransition(ctx context.Context, tr domain.Transition) {
	for _, o := range c.observers {
		o.OnTransition(ctx, tr)
	}
}

func (c *CompositeObserver) OnPassCompleted(ctx context.Context, pass uint64, n int, d time.Duration) {
	for _, o := range c.observers {
		o.OnPassCompleted(ctx, pass, n, d)
	}
}

func (c *CompositeObserver) OnSystemRun(ctx context.Context, name string, err error, d time.Duration) {
	for _, o := range c.observers {
		o.OnSystemRun(ctx, name, err, d)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs pass and transition
// lifecycle events using the provided slog.Logger. If logger is nil,
// slog.Default() is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnPassStart(ctx context.Context, pass uint64) {
	o.Logger.DebugContext(ctx, "pass_start",
		slog.Uint64("pass", pass),
	)
}

func (o *LoggingObserver) OnTransition(ctx context.Context, tr domain.Transition) {
	o.Logger.InfoContext(ctx, "transition",
		slog.String("kind", tr.Name),
		slog.String("from", tr.From.String()),
		slog.String("to", tr.To.String()),
		slog.Uint64("pass", tr.Pass),
	)
}

func (o *LoggingObserver) OnPassCompleted(ctx context.Context, pass uint64, n int, d time.Duration) {
	o.Logger.DebugContext(ctx, "pass_completed",
		slog.Uint64("pass", pass),
		slog.Int("records", n),
		slog.Duration("duration", d),
	)
}

func (o *LoggingObserver) OnSystemRun(ctx context.Context, name string, err error, d time.Duration) {
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelError
	}
	o.Logger.Log(ctx, level, "system_run",
		slog.String("system", name),
		slog.Duration("duration", d),
		slog.Any("error", err),
	)
}

// BasicMetrics collects simple counters and aggregate pass durations.
// It implements Observer, and can be combined with LoggingObserver via
// NewCompositeObserver.
type BasicMetrics struct {
	NoopObserver

	passesCompleted   atomic.Int64
	transitions       atomic.Int64
	systemRuns        atomic.Int64
	systemFailures    atomic.Int64
	totalPassDuration atomic.Int64 // nanoseconds
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	PassesCompleted int64
	Transitions     int64
	SystemRuns      int64
	SystemFailures  int64
	AvgPassDuration time.Duration
}

func (m *BasicMetrics) OnTransition(ctx context.Context, tr domain.Transition) {
	m.transitions.Add(1)
}

func (m *BasicMetrics) OnPassCompleted(ctx context.Context, pass uint64, n int, d time.Duration) {
	m.passesCompleted.Add(1)
	m.totalPassDuration.Add(d.Nanoseconds())
}

func (m *BasicMetrics) OnSystemRun(ctx context.Context, name string, err error, d time.Duration) {
	m.systemRuns.Add(1)
	if err != nil {
		m.systemFailures.Add(1)
	}
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	passes := m.passesCompleted.Load()
	totalNs := m.totalPassDuration.Load()

	var avg time.Duration
	if passes > 0 {
		avg = time.Duration(totalNs / passes)
	}

	return BasicMetricsSnapshot{
		PassesCompleted: passes,
		Transitions:     m.transitions.Load(),
		SystemRuns:      m.systemRuns.Load(),
		SystemFailures:  m.systemFailures.Load(),
		AvgPassDuration: avg,
	}
}
