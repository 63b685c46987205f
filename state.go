package bevy

import (
	"context"
	"fmt"
	"reflect"

	"github.com/Git0Shuai/bevy/internal/runtime"
	"github.com/Git0Shuai/bevy/pkg/domain"
)

// Handle is the read side shared by every typed state handle. Any handle can
// serve as the parent of a sub kind or the source of a computed kind,
// regardless of its own variant.
type Handle[S comparable] interface {
	// Name returns the kind name the handle was registered under.
	Name() string
	// Current returns the kind's value, with ok=false while it is absent.
	Current() (S, bool)

	kindID() domain.KindID
	owner() *App
}

// key carries the shared behavior of all typed handles.
type key[S comparable] struct {
	app  *App
	id   domain.KindID
	name string
}

func (k *key[S]) Name() string          { return k.name }
func (k *key[S]) kindID() domain.KindID { return k.id }
func (k *key[S]) owner() *App           { return k.app }

// Current returns the kind's value, with ok=false while it is absent.
func (k *key[S]) Current() (S, bool) {
	v, ok := k.app.engine.Get(k.id)
	if !ok {
		var zero S
		return zero, false
	}
	return v.(S), true
}

// LastTransition returns the kind's most recent transition record, with
// ok=false before the first one. The record survives quiet passes.
func (k *key[S]) LastTransition() (domain.Transition, bool) {
	return k.app.engine.LastTransition(k.id)
}

// OnEnter registers h to run whenever the kind enters value.
func (k *key[S]) OnEnter(value S, h domain.Hook) {
	k.app.engine.OnEnter(k.id, value, h)
}

// OnExit registers h to run whenever the kind leaves value.
func (k *key[S]) OnExit(value S, h domain.Hook) {
	k.app.engine.OnExit(k.id, value, h)
}

// OnTransition registers fn for every record of the kind. from and to are nil
// on the absent side of activation and deactivation records.
func (k *key[S]) OnTransition(fn func(ctx context.Context, from, to *S) error) {
	k.app.engine.OnTransition(k.id, func(ctx context.Context, tr domain.Transition) error {
		return fn(ctx, endpoint[S](tr.From), endpoint[S](tr.To))
	})
}

// InState returns a run condition that holds while the kind's value equals v.
func (k *key[S]) InState(v S) domain.Condition {
	return func() bool {
		cur, ok := k.Current()
		return ok && cur == v
	}
}

// Absent returns a run condition that holds while the kind has no value.
func (k *key[S]) Absent() domain.Condition {
	return func() bool {
		_, ok := k.Current()
		return !ok
	}
}

// Changed returns a run condition that holds during the tick whose pass
// produced a record for this kind.
func (k *key[S]) Changed() domain.Condition {
	return func() bool { return k.app.engine.Changed(k.id) }
}

// DespawnOnExit queues e for despawn on the first pass where the kind stops
// being at value. The tag fires once.
func (k *key[S]) DespawnOnExit(e domain.Entity, value S) {
	k.app.engine.ScopeEntity(e, domain.Scope{Kind: k.id, Value: value, Polarity: domain.OnExit})
}

// DespawnOnEnter queues e for despawn on the first pass where the kind
// becomes value. The tag fires once.
func (k *key[S]) DespawnOnEnter(e domain.Entity, value S) {
	k.app.engine.ScopeEntity(e, domain.Scope{Kind: k.id, Value: value, Polarity: domain.OnEnter})
}

// ClearEventsOnExit queues the event topic for clearing whenever the kind
// stops being at value. Unlike entity tags, topic tags persist and fire on
// every matching transition.
func (k *key[S]) ClearEventsOnExit(topic string, value S) {
	k.app.engine.ScopeTopic(topic, domain.Scope{Kind: k.id, Value: value, Polarity: domain.OnExit})
}

// ClearEventsOnEnter queues the event topic for clearing whenever the kind
// becomes value.
func (k *key[S]) ClearEventsOnEnter(topic string, value S) {
	k.app.engine.ScopeTopic(topic, domain.Scope{Kind: k.id, Value: value, Polarity: domain.OnEnter})
}

func endpoint[S comparable](o domain.Optional) *S {
	if !o.Valid {
		return nil
	}
	v := o.Value.(S)
	return &v
}

// State is the typed handle of a primary kind. It is the only handle with a
// mutation surface.
type State[S comparable] struct {
	key[S]
}

// Set queues value as the kind's pending request. Within one tick the last
// request wins; the change takes effect on the next pass. Setting the
// current value again is a no-op and produces no record.
func (s *State[S]) Set(value S) {
	s.app.engine.SetPending(s.id, value)
}

// SubState is the typed handle of a sub kind. Its value follows its parent:
// present at the declared default while the parent predicate holds, absent
// otherwise. It has no mutation surface.
type SubState[S comparable] struct {
	key[S]
}

// ComputedState is the typed handle of a computed kind. Its value is derived
// from its sources on every pass and cannot be set.
type ComputedState[S comparable] struct {
	key[S]
}

// StateOption configures a primary kind at registration.
type StateOption[S comparable] func(*stateConfig[S])

type stateConfig[S comparable] struct {
	enc func(S) string
	dec func(string) (S, error)
}

// WithCodec overrides the automatic string codec used by snapshots and
// name-based requests. Kinds whose value type is outside the string, bool,
// integer and float families need one to be snapshot-capable.
func WithCodec[S comparable](enc func(S) string, dec func(string) (S, error)) StateOption[S] {
	return func(c *stateConfig[S]) {
		c.enc = enc
		c.dec = dec
	}
}

// AddState registers a primary kind with its initial value. Primary kinds
// hold their value from the first pass on and change only through Set,
// RequestByName or snapshot restore.
func AddState[S comparable](app *App, name string, initial S, opts ...StateOption[S]) (*State[S], error) {
	var cfg stateConfig[S]
	for _, opt := range opts {
		opt(&cfg)
	}

	codec, coded := runtime.DefaultCodec(reflect.TypeOf(initial))
	if cfg.enc != nil && cfg.dec != nil {
		codec = runtime.Codec{
			Encode: func(v any) (string, error) {
				return cfg.enc(v.(S)), nil
			},
			Decode: func(s string) (any, error) {
				v, err := cfg.dec(s)
				if err != nil {
					return nil, fmt.Errorf("%w: %v", domain.ErrBadEncoding, err)
				}
				return v, nil
			},
		}
		coded = true
	}

	id, err := app.engine.AddPrimary(name, initial, codec, coded)
	if err != nil {
		return nil, err
	}
	return &State[S]{key[S]{app: app, id: id, name: name}}, nil
}

// AddSubState registers a sub kind under parent. While predicate holds on the
// parent's value the kind is present, re-activating at the activation
// default each time; while it does not, the kind is absent.
func AddSubState[S, P comparable](app *App, name string, parent Handle[P], predicate func(P) bool, activation S) (*SubState[S], error) {
	if err := sameApp(app, name, parent); err != nil {
		return nil, err
	}
	if predicate == nil {
		return nil, fmt.Errorf("add sub %q: %w", name, domain.ErrNilPredicate)
	}

	id, err := app.engine.AddSub(name, parent.kindID(), func(v any) bool {
		return predicate(v.(P))
	}, activation)
	if err != nil {
		return nil, err
	}
	return &SubState[S]{key[S]{app: app, id: id, name: name}}, nil
}

// AddComputedState registers a computed kind derived from one source. derive
// runs on every pass where the source is present; returning ok=false makes
// the kind absent for that pass.
func AddComputedState[S, A comparable](app *App, name string, src Handle[A], derive func(A) (S, bool)) (*ComputedState[S], error) {
	if err := sameApp(app, name, src); err != nil {
		return nil, err
	}
	if derive == nil {
		return nil, fmt.Errorf("add computed %q: %w", name, domain.ErrNilDerivation)
	}

	id, err := app.engine.AddComputed(name, []domain.KindID{src.kindID()}, func(vs []any) (any, bool) {
		return derive(vs[0].(A))
	})
	if err != nil {
		return nil, err
	}
	return &ComputedState[S]{key[S]{app: app, id: id, name: name}}, nil
}

// AddComputedState2 registers a computed kind derived from two sources. The
// kind is absent whenever either source is absent.
func AddComputedState2[S, A, B comparable](app *App, name string, srcA Handle[A], srcB Handle[B], derive func(A, B) (S, bool)) (*ComputedState[S], error) {
	if err := sameApp(app, name, srcA, srcB); err != nil {
		return nil, err
	}
	if derive == nil {
		return nil, fmt.Errorf("add computed %q: %w", name, domain.ErrNilDerivation)
	}

	id, err := app.engine.AddComputed(name, []domain.KindID{srcA.kindID(), srcB.kindID()}, func(vs []any) (any, bool) {
		return derive(vs[0].(A), vs[1].(B))
	})
	if err != nil {
		return nil, err
	}
	return &ComputedState[S]{key[S]{app: app, id: id, name: name}}, nil
}

// AddComputedState3 registers a computed kind derived from three sources.
// Wider derivations compose by chaining computed kinds.
func AddComputedState3[S, A, B, C comparable](app *App, name string, srcA Handle[A], srcB Handle[B], srcC Handle[C], derive func(A, B, C) (S, bool)) (*ComputedState[S], error) {
	if err := sameApp(app, name, srcA, srcB, srcC); err != nil {
		return nil, err
	}
	if derive == nil {
		return nil, fmt.Errorf("add computed %q: %w", name, domain.ErrNilDerivation)
	}

	id, err := app.engine.AddComputed(name, []domain.KindID{srcA.kindID(), srcB.kindID(), srcC.kindID()}, func(vs []any) (any, bool) {
		return derive(vs[0].(A), vs[1].(B), vs[2].(C))
	})
	if err != nil {
		return nil, err
	}
	return &ComputedState[S]{key[S]{app: app, id: id, name: name}}, nil
}

type anyHandle interface {
	Name() string
	owner() *App
}

func sameApp(app *App, name string, parents ...anyHandle) error {
	for _, p := range parents {
		if p.owner() != app {
			return fmt.Errorf("add %q: parent %q belongs to a different app: %w", name, p.Name(), domain.ErrUnknownKind)
		}
	}
	return nil
}
