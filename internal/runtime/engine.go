package runtime

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Git0Shuai/bevy/pkg/domain"
	"github.com/Git0Shuai/bevy/pkg/ports"
)

// Engine is the core transition driver. It owns the registry, the value
// store, the callback schedule, and the scoped-cleanup set, and advances the
// whole graph one pass at a time. A pass is a single topological sweep: the
// graph is acyclic, so no iteration to convergence is needed.
type Engine struct {
	reg    *Registry
	store  *Store
	sched  *Schedule
	scopes *ScopeSet
	logger *slog.Logger

	mu      sync.RWMutex
	pass    uint64
	records []domain.Transition
	byKind  map[domain.KindID]int
	last    map[domain.KindID]domain.Transition
}

// NewEngine creates an engine with an empty state graph.
func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{
		reg:    NewRegistry(),
		store:  NewStore(0),
		sched:  NewSchedule(),
		scopes: NewScopeSet(),
		logger: logger,
		byKind: make(map[domain.KindID]int),
		last:   make(map[domain.KindID]domain.Transition),
	}
}

// AddPrimary registers a primary kind and seeds its slot with the initial
// value. The slot exists from registration on, before the first pass.
func (e *Engine) AddPrimary(name string, initial any, codec Codec, coded bool) (domain.KindID, error) {
	id, err := e.reg.AddPrimary(name, initial, codec, coded)
	if err != nil {
		return 0, err
	}
	e.store.install(id, initial, true)
	e.logger.Debug("registered state kind", "kind", name, "variant", "primary", "initial", initial)
	return id, nil
}

// AddSub registers a sub kind. Its slot starts absent; the first pass where
// the predicate holds activates it.
func (e *Engine) AddSub(name string, parent domain.KindID, predicate func(any) bool, activation any) (domain.KindID, error) {
	id, err := e.reg.AddSub(name, parent, predicate, activation)
	if err != nil {
		return 0, err
	}
	e.store.install(id, nil, false)
	e.logger.Debug("registered state kind", "kind", name, "variant", "sub", "parent", parent)
	return id, nil
}

// AddComputed registers a computed kind. Its slot starts absent; the first
// pass where all sources are present derives it.
func (e *Engine) AddComputed(name string, sources []domain.KindID, derive func([]any) (any, bool)) (domain.KindID, error) {
	id, err := e.reg.AddComputed(name, sources, derive)
	if err != nil {
		return 0, err
	}
	e.store.install(id, nil, false)
	e.logger.Debug("registered state kind", "kind", name, "variant", "computed", "sources", sources)
	return id, nil
}

// Build validates the dependency graph and freezes registration. Returns a
// CycleError when the edges do not form a DAG.
func (e *Engine) Build() error {
	if err := e.reg.Freeze(); err != nil {
		return fmt.Errorf("build state graph: %w", err)
	}
	e.logger.Debug("state graph built", "kinds", e.reg.Len(), "dependents", len(e.reg.Order()))
	return nil
}

// Built reports whether Build has completed.
func (e *Engine) Built() bool {
	return e.reg.Frozen()
}

// Get returns the current value of a kind, or ok=false while absent.
func (e *Engine) Get(id domain.KindID) (any, bool) {
	return e.store.Get(id)
}

// SetPending queues a value change without validating the kind. Callers must
// guarantee id names a primary kind; the typed handles enforce that
// structurally, everything name-based goes through Request or RequestDecoded.
func (e *Engine) SetPending(id domain.KindID, value any) {
	e.store.SetPending(id, value)
}

// Request queues a pending value for a primary kind. Sub and computed kinds
// are rejected.
func (e *Engine) Request(id domain.KindID, value any) error {
	spec, ok := e.reg.Spec(id)
	if !ok {
		return fmt.Errorf("request kind %d: %w", id, domain.ErrUnknownKind)
	}
	if spec.desc.Variant != domain.VariantPrimary {
		return fmt.Errorf("request %q: %w", spec.desc.Name, domain.ErrNotPrimary)
	}
	e.store.SetPending(id, value)
	return nil
}

// RequestDecoded resolves a kind by name, decodes the raw value with the
// kind's codec, and queues it. This is the entry point for name-based
// surfaces (HTTP, snapshots, manifests).
func (e *Engine) RequestDecoded(name, raw string) error {
	id, ok := e.reg.Lookup(name)
	if !ok {
		return fmt.Errorf("request %q: %w", name, domain.ErrUnknownKind)
	}
	spec, _ := e.reg.Spec(id)
	if spec.desc.Variant != domain.VariantPrimary {
		return fmt.Errorf("request %q: %w", name, domain.ErrNotPrimary)
	}
	if !spec.coded {
		return fmt.Errorf("request %q: %w", name, domain.ErrNoCodec)
	}
	value, err := spec.codec.Decode(raw)
	if err != nil {
		return fmt.Errorf("request %q: %w", name, err)
	}
	e.store.SetPending(id, value)
	return nil
}

// Pass executes one transition pass and returns the records it produced, in
// production order: primaries in request order, then sub and computed kinds
// in topological order. Scoped cleanup is queued on the world before the
// pass returns; the caller drains it after the callback phases.
func (e *Engine) Pass(w ports.World) ([]domain.Transition, error) {
	if !e.reg.Frozen() {
		return nil, domain.ErrNotBuilt
	}

	requests := e.store.drainPending()

	e.store.lock()
	defer e.store.unlock()
	e.mu.Lock()
	defer e.mu.Unlock()

	e.pass++
	records := make([]domain.Transition, 0, len(requests))
	byKind := make(map[domain.KindID]int)

	record := func(id domain.KindID, name string, from, to domain.Optional) {
		tr := domain.Transition{Kind: id, Name: name, From: from, To: to, Pass: e.pass}
		byKind[id] = len(records)
		records = append(records, tr)
		e.last[id] = tr
		e.logger.Debug("state transition", "kind", name, "from", from.String(), "to", to.String(), "pass", e.pass)
	}

	// 1. Apply pending primary requests in request order. The new value is
	// written immediately so dependents observe it within the same sweep.
	for _, req := range requests {
		spec, _ := e.reg.Spec(req.kind)
		old, _ := e.store.current(req.kind)
		if old == req.value {
			continue
		}
		e.store.put(req.kind, req.value, true)
		record(req.kind, spec.desc.Name, domain.Some(old), domain.Some(req.value))
	}

	// 2. Revisit sub and computed kinds in the cached topological order, so
	// every parent and source is final before its dependents are evaluated.
	for _, id := range e.reg.Order() {
		spec, _ := e.reg.Spec(id)
		oldV, oldOK := e.store.current(id)

		var newV any
		var newOK bool
		switch spec.desc.Variant {
		case domain.VariantSub:
			if pv, pok := e.store.current(spec.parent); pok && spec.predicate(pv) {
				if oldOK {
					newV, newOK = oldV, true
				} else {
					newV, newOK = spec.activation, true
				}
			}
		case domain.VariantComputed:
			if vals, all := e.sourceValues(spec); all {
				if v, ok := spec.derive(vals); ok {
					newV, newOK = v, true
				}
			}
		}

		if oldOK == newOK && (!oldOK || oldV == newV) {
			continue
		}
		e.store.put(id, newV, newOK)
		record(id, spec.desc.Name, optional(oldV, oldOK), optional(newV, newOK))
	}

	e.records = records
	e.byKind = byKind

	// 3. Queue scoped cleanup from the final records before yielding back to
	// the app's callback phases.
	e.scopes.Apply(records, w)

	if len(records) > 0 {
		e.logger.Debug("pass complete", "pass", e.pass, "requests", len(requests), "records", len(records))
	}
	return records, nil
}

// sourceValues collects a computed kind's source values; all=false as soon as
// any source is absent.
func (e *Engine) sourceValues(spec *kindSpec) ([]any, bool) {
	vals := make([]any, len(spec.desc.Sources))
	for i, src := range spec.desc.Sources {
		v, ok := e.store.current(src)
		if !ok {
			return nil, false
		}
		vals[i] = v
	}
	return vals, true
}

// Changed reports whether the kind has a record in the most recent pass.
// False before the first pass.
func (e *Engine) Changed(id domain.KindID) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.byKind[id]
	return ok
}

// Records returns a copy of the most recent pass's records in production
// order.
func (e *Engine) Records() []domain.Transition {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]domain.Transition(nil), e.records...)
}

// LastTransition returns the kind's most recent record from any pass, not
// just the last one.
func (e *Engine) LastTransition(id domain.KindID) (domain.Transition, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	tr, ok := e.last[id]
	return tr, ok
}

// PassCount returns how many passes have executed.
func (e *Engine) PassCount() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.pass
}

// OnEnter registers a hook for the kind entering the value.
func (e *Engine) OnEnter(id domain.KindID, value any, h domain.Hook) {
	e.sched.OnEnter(id, value, h)
}

// OnExit registers a hook for the kind leaving the value.
func (e *Engine) OnExit(id domain.KindID, value any, h domain.Hook) {
	e.sched.OnExit(id, value, h)
}

// OnTransition registers a hook for every change of the kind.
func (e *Engine) OnTransition(id domain.KindID, h domain.TransitionHook) {
	e.sched.OnTransition(id, h)
}

// EnterHooks exposes the enter group for one record endpoint.
func (e *Engine) EnterHooks(id domain.KindID, value any) []domain.Hook {
	return e.sched.EnterHooks(id, value)
}

// ExitHooks exposes the exit group for one record endpoint.
func (e *Engine) ExitHooks(id domain.KindID, value any) []domain.Hook {
	return e.sched.ExitHooks(id, value)
}

// TransitionHooks exposes the transition group for a kind.
func (e *Engine) TransitionHooks(id domain.KindID) []domain.TransitionHook {
	return e.sched.TransitionHooks(id)
}

// ScopeEntity binds an entity's lifetime to a state value.
func (e *Engine) ScopeEntity(ent domain.Entity, sc domain.Scope) {
	e.scopes.TagEntity(ent, sc)
}

// ScopeTopic binds an event topic's contents to a state value.
func (e *Engine) ScopeTopic(topic string, sc domain.Scope) {
	e.scopes.TagTopic(topic, sc)
}

// Lookup resolves a kind name to its ID.
func (e *Engine) Lookup(name string) (domain.KindID, bool) {
	return e.reg.Lookup(name)
}

// Descriptors returns every registered kind, in registration order.
func (e *Engine) Descriptors() []domain.Descriptor {
	return e.reg.Descriptors()
}

// Snapshot encodes every primary kind's current value with its codec.
func (e *Engine) Snapshot() (domain.Snapshot, error) {
	states := make(map[string]string)
	for _, desc := range e.reg.Descriptors() {
		if desc.Variant != domain.VariantPrimary {
			continue
		}
		spec, _ := e.reg.Spec(desc.ID)
		if !spec.coded {
			return domain.Snapshot{}, fmt.Errorf("snapshot %q: %w", desc.Name, domain.ErrNoCodec)
		}
		v, _ := e.store.Get(desc.ID)
		encoded, err := spec.codec.Encode(v)
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("snapshot %q: %w", desc.Name, err)
		}
		states[desc.Name] = encoded
	}
	return domain.Snapshot{TakenAt: time.Now().UTC(), States: states}, nil
}

// Restore queues every snapshot value as an ordinary pending request, so
// restoration flows through the normal pass and fires normal callbacks.
// Kinds are queued in name order to keep the record order deterministic.
func (e *Engine) Restore(snap domain.Snapshot) error {
	names := make([]string, 0, len(snap.States))
	for name := range snap.States {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := e.RequestDecoded(name, snap.States[name]); err != nil {
			return fmt.Errorf("restore: %w", err)
		}
	}
	return nil
}

func optional(v any, ok bool) domain.Optional {
	if !ok {
		return domain.None()
	}
	return domain.Some(v)
}
