package runner

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/Git0Shuai/bevy"
	"github.com/Git0Shuai/bevy/pkg/domain"
)

// Runner drives an app's passes on a fixed interval until the context ends.
// Queued requests only apply when a pass runs, so the runner is the heartbeat
// that makes name-based surfaces (HTTP, MCP) land their requests.
type Runner struct {
	app      *bevy.App
	interval time.Duration
	logger   *slog.Logger

	autosaveName  string
	autosaveEvery uint64

	maxPasses uint64
}

// New creates a Runner for a built app.
func New(app *bevy.App, opts ...Option) *Runner {
	r := &Runner{
		app:      app,
		interval: time.Second,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the loop until the context is cancelled or the configured
// pass limit is reached. Callback failures are logged, never fatal: the
// pass that produced them has already committed.
func (r *Runner) Run(ctx context.Context) error {
	if !r.app.Built() {
		return domain.ErrNotBuilt
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	var passes uint64
	for {
		select {
		case <-ctx.Done():
			r.finalAutosave(ctx)
			return nil

		case <-ticker.C:
			if err := r.app.Tick(ctx); err != nil {
				r.logger.Error("tick finished with errors", "error", err)
			}
			passes++

			if r.autosaveEvery > 0 && passes%r.autosaveEvery == 0 {
				if err := r.app.Save(ctx, r.autosaveName); err != nil {
					r.logger.Error("autosave failed", "name", r.autosaveName, "error", err)
				}
			}

			if r.maxPasses > 0 && passes >= r.maxPasses {
				r.finalAutosave(ctx)
				return nil
			}
		}
	}
}

// finalAutosave writes one last snapshot on the way out so a restart resumes
// close to where the loop stopped. The loop context may already be
// cancelled, hence the detached save context.
func (r *Runner) finalAutosave(ctx context.Context) {
	if r.autosaveEvery == 0 {
		return
	}
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := r.app.Save(saveCtx, r.autosaveName); err != nil {
		r.logger.Error("final autosave failed", "name", r.autosaveName, "error", err)
	}
}
