package bevy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Git0Shuai/bevy/internal/runtime"
	"github.com/Git0Shuai/bevy/pkg/adapters/memory"
	"github.com/Git0Shuai/bevy/pkg/domain"
	"github.com/Git0Shuai/bevy/pkg/observability"
	"github.com/Git0Shuai/bevy/pkg/ports"
)

// App owns a state dependency graph and plays the host scheduler: each Tick
// applies pending requests in a single transition pass, runs the callback
// phases over the produced records, flushes deferred world maintenance, and
// finally runs gated systems.
type App struct {
	name     string
	engine   *runtime.Engine
	world    ports.World
	snaps    ports.SnapshotStore
	journal  ports.TransitionJournal
	observer observability.Observer
	logger   *slog.Logger

	mu      sync.Mutex // serializes Tick and system registration
	systems []gatedSystem
}

type gatedSystem struct {
	name string
	run  domain.System
	when []domain.Condition
}

// Option defines a functional option for configuring the App.
type Option func(*App)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithWorld sets the world that receives scoped cleanup. Defaults to an
// in-memory world.
func WithWorld(w ports.World) Option {
	return func(a *App) {
		a.world = w
	}
}

// WithSnapshotStore enables Save and Load by providing snapshot persistence.
func WithSnapshotStore(s ports.SnapshotStore) Option {
	return func(a *App) {
		a.snaps = s
	}
}

// WithJournal appends every pass's transition records to the given journal.
func WithJournal(j ports.TransitionJournal) Option {
	return func(a *App) {
		a.journal = j
	}
}

// WithObserver attaches an observer for logs and metrics. Use
// observability.NewCompositeObserver to attach more than one.
func WithObserver(o observability.Observer) Option {
	return func(a *App) {
		a.observer = o
	}
}

// New creates an App with the given name. The name only tags log lines; it
// carries no runtime meaning.
func New(name string, opts ...Option) *App {
	a := &App{name: name}

	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	a.logger = a.logger.With("app", name)

	if a.world == nil {
		a.world = memory.NewWorld()
	}
	if a.observer == nil {
		a.observer = observability.NoopObserver{}
	}

	a.engine = runtime.NewEngine(a.logger)
	return a
}

// Name returns the app name.
func (a *App) Name() string {
	return a.name
}

// World returns the world scoped cleanup is applied to.
func (a *App) World() ports.World {
	return a.world
}

// Build validates the dependency graph and freezes registration. It must be
// called once before the first Tick; registering kinds afterwards fails with
// ErrFrozen.
func (a *App) Build() error {
	if err := a.engine.Build(); err != nil {
		return err
	}
	a.logger.Info("state graph built", "kinds", len(a.engine.Descriptors()))
	return nil
}

// Built reports whether Build has completed successfully.
func (a *App) Built() bool {
	return a.engine.Built()
}

// AddSystem registers a system that runs at the end of every tick, after the
// callback phases and world maintenance. The conditions are evaluated each
// tick and the system runs only when all of them hold.
func (a *App) AddSystem(name string, run domain.System, when ...domain.Condition) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.systems = append(a.systems, gatedSystem{name: name, run: run, when: when})
}

// Tick runs one scheduling frame.
//
// The pass itself cannot fail once the graph is built; a non-nil error joins
// the failures of hooks, systems and the journal for this tick. State has
// already advanced when Tick returns an error.
func (a *App) Tick(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	start := time.Now()
	a.observer.OnPassStart(ctx, a.engine.PassCount()+1)

	// 1. Apply pending requests and propagate through the graph.
	records, err := a.engine.Pass(a.world)
	if err != nil {
		return err
	}
	pass := a.engine.PassCount()

	var errs []error

	// 2. Journal and observe the produced records.
	for _, r := range records {
		a.observer.OnTransition(ctx, r)
	}
	if a.journal != nil && len(records) > 0 {
		if err := a.journal.Append(ctx, records); err != nil {
			errs = append(errs, fmt.Errorf("journal append: %w", err))
		}
	}

	// 3. Callback phases: all exits, then all transitions, then all enters.
	for _, r := range records {
		if !r.Exited() {
			continue
		}
		for _, h := range a.engine.ExitHooks(r.Kind, r.From.Value) {
			if err := h(ctx); err != nil {
				errs = append(errs, fmt.Errorf("on exit %s: %w", r.Name, err))
			}
		}
	}
	for _, r := range records {
		for _, h := range a.engine.TransitionHooks(r.Kind) {
			if err := h(ctx, r); err != nil {
				errs = append(errs, fmt.Errorf("on transition %s: %w", r.Name, err))
			}
		}
	}
	for _, r := range records {
		if !r.Entered() {
			continue
		}
		for _, h := range a.engine.EnterHooks(r.Kind, r.To.Value) {
			if err := h(ctx); err != nil {
				errs = append(errs, fmt.Errorf("on enter %s: %w", r.Name, err))
			}
		}
	}

	// 4. Deferred world maintenance queued by scoped cleanup. Hooks above
	// still observed the pre-cleanup world.
	a.world.Flush()

	// 5. Gated systems.
	for _, s := range a.systems {
		if !allHold(s.when) {
			continue
		}
		sysStart := time.Now()
		err := s.run(ctx)
		a.observer.OnSystemRun(ctx, s.name, err, time.Since(sysStart))
		if err != nil {
			errs = append(errs, fmt.Errorf("system %s: %w", s.name, err))
		}
	}

	a.observer.OnPassCompleted(ctx, pass, len(records), time.Since(start))
	return errors.Join(errs...)
}

func allHold(conds []domain.Condition) bool {
	for _, c := range conds {
		if !c() {
			return false
		}
	}
	return true
}

// RequestByName queues a primary state change using the kind's string codec.
// It is the dynamic mirror of State.Set for callers outside the typed API,
// such as the debug server and snapshot restore.
func (a *App) RequestByName(kind, value string) error {
	return a.engine.RequestDecoded(kind, value)
}

// Descriptors lists every registered kind in dependency order.
func (a *App) Descriptors() []domain.Descriptor {
	return a.engine.Descriptors()
}

// Records returns the transition records produced by the most recent pass.
func (a *App) Records() []domain.Transition {
	return a.engine.Records()
}

// LastTransition returns the most recent transition record of the named kind,
// with ok=false when the kind is unknown or has not transitioned yet.
func (a *App) LastTransition(kind string) (domain.Transition, bool) {
	id, ok := a.engine.Lookup(kind)
	if !ok {
		return domain.Transition{}, false
	}
	return a.engine.LastTransition(id)
}

// Value reports the current value of the named kind in display form, with
// ok=false when the kind is unknown or currently absent.
func (a *App) Value(kind string) (string, bool) {
	id, ok := a.engine.Lookup(kind)
	if !ok {
		return "", false
	}
	v, ok := a.engine.Get(id)
	if !ok {
		return "", false
	}
	return fmt.Sprint(v), true
}

// PassCount reports how many passes have run.
func (a *App) PassCount() uint64 {
	return a.engine.PassCount()
}

// Snapshot captures the current values of every settable state kind.
func (a *App) Snapshot() (domain.Snapshot, error) {
	return a.engine.Snapshot()
}

// Restore queues requests returning each captured kind to its saved value.
// The requests take effect on the next Tick.
func (a *App) Restore(snap domain.Snapshot) error {
	return a.engine.Restore(snap)
}

// Save captures a snapshot and persists it under name in the configured
// snapshot store.
func (a *App) Save(ctx context.Context, name string) error {
	if a.snaps == nil {
		return domain.ErrNoSnapshotStore
	}
	snap, err := a.engine.Snapshot()
	if err != nil {
		return err
	}
	if err := a.snaps.Save(ctx, name, snap); err != nil {
		return fmt.Errorf("save snapshot %q: %w", name, err)
	}
	a.logger.Info("snapshot saved", "name", name, "states", len(snap.States))
	return nil
}

// Load reads the named snapshot from the store and queues its values as
// pending requests for the next Tick.
func (a *App) Load(ctx context.Context, name string) error {
	if a.snaps == nil {
		return domain.ErrNoSnapshotStore
	}
	snap, err := a.snaps.Load(ctx, name)
	if err != nil {
		return fmt.Errorf("load snapshot %q: %w", name, err)
	}
	if err := a.engine.Restore(snap); err != nil {
		return err
	}
	a.logger.Info("snapshot loaded", "name", name, "states", len(snap.States))
	return nil
}
