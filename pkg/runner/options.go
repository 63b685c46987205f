package runner

import (
	"log/slog"
	"time"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithInterval sets the time between passes. The default is one second.
func WithInterval(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithAutosave persists a snapshot under name every n passes, and once more
// when the loop stops. The app must be configured with a snapshot store.
func WithAutosave(name string, every uint64) Option {
	return func(r *Runner) {
		r.autosaveName = name
		r.autosaveEvery = every
	}
}

// WithMaxPasses stops the runner after n passes. Zero means run until the
// context ends.
func WithMaxPasses(n uint64) Option {
	return func(r *Runner) {
		r.maxPasses = n
	}
}
