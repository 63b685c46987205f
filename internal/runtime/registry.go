package runtime

import (
	"fmt"
	"sync"

	"github.com/Git0Shuai/bevy/pkg/domain"
)

// kindSpec is the registration-time description of one state kind. The
// behavior selected by the variant tag lives here; the engine dispatches on
// desc.Variant rather than on dynamic types.
type kindSpec struct {
	desc  domain.Descriptor
	codec Codec
	coded bool

	// primary
	initial any

	// sub
	parent     domain.KindID
	predicate  func(parent any) bool
	activation any

	// computed
	derive func(sources []any) (any, bool)
}

// Registry holds the declared state kinds and their dependency edges. It is
// mutable until Freeze, which validates the graph, caches the topological
// order, and rejects further registration.
type Registry struct {
	mu     sync.Mutex
	byName map[string]domain.KindID
	specs  []*kindSpec
	order  []domain.KindID
	frozen bool
}

func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]domain.KindID),
	}
}

func (r *Registry) add(spec *kindSpec) (domain.KindID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return 0, fmt.Errorf("register %q: %w", spec.desc.Name, domain.ErrFrozen)
	}
	if _, exists := r.byName[spec.desc.Name]; exists {
		return 0, fmt.Errorf("register %q: %w", spec.desc.Name, domain.ErrDuplicateKind)
	}

	id := domain.KindID(len(r.specs))
	spec.desc.ID = id
	r.byName[spec.desc.Name] = id
	r.specs = append(r.specs, spec)
	return id, nil
}

// AddPrimary registers an externally mutated kind with its initial value.
func (r *Registry) AddPrimary(name string, initial any, codec Codec, coded bool) (domain.KindID, error) {
	return r.add(&kindSpec{
		desc:    domain.Descriptor{Name: name, Variant: domain.VariantPrimary},
		initial: initial,
		codec:   codec,
		coded:   coded,
	})
}

// AddSub registers a kind that exists only while predicate holds over the
// parent's value. The activation value is used the first time the predicate
// turns true with no prior value to restore.
func (r *Registry) AddSub(name string, parent domain.KindID, predicate func(any) bool, activation any) (domain.KindID, error) {
	if err := r.checkSource(name, parent); err != nil {
		return 0, err
	}
	if predicate == nil {
		return 0, fmt.Errorf("register %q: %w", name, domain.ErrNilPredicate)
	}
	return r.add(&kindSpec{
		desc: domain.Descriptor{
			Name:    name,
			Variant: domain.VariantSub,
			Sources: []domain.KindID{parent},
		},
		parent:     parent,
		predicate:  predicate,
		activation: activation,
	})
}

// AddComputed registers a kind derived from the given sources. The derivation
// runs only when every source is present; returning ok=false makes the kind
// absent for that pass.
func (r *Registry) AddComputed(name string, sources []domain.KindID, derive func([]any) (any, bool)) (domain.KindID, error) {
	if len(sources) == 0 {
		return 0, fmt.Errorf("register %q: %w", name, domain.ErrNoSources)
	}
	for _, src := range sources {
		if err := r.checkSource(name, src); err != nil {
			return 0, err
		}
	}
	if derive == nil {
		return 0, fmt.Errorf("register %q: %w", name, domain.ErrNilDerivation)
	}
	return r.add(&kindSpec{
		desc: domain.Descriptor{
			Name:    name,
			Variant: domain.VariantComputed,
			Sources: append([]domain.KindID(nil), sources...),
		},
		derive: derive,
	})
}

func (r *Registry) checkSource(name string, src domain.KindID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if src < 0 || int(src) >= len(r.specs) {
		return fmt.Errorf("register %q: source %d: %w", name, src, domain.ErrUnknownKind)
	}
	return nil
}

// Freeze validates the dependency graph, caches the topological order of sub
// and computed kinds, and locks the registry. The order is computed once here
// and reused on every pass.
func (r *Registry) Freeze() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return nil
	}

	order, err := r.topoOrder()
	if err != nil {
		return err
	}
	r.order = order
	r.frozen = true
	return nil
}

// topoOrder runs Kahn's algorithm over the dependency edges. It returns the
// non-primary kinds in an order where every parent and source precedes its
// dependents, with registration order breaking ties. A cycle yields a
// CycleError naming the kinds left unsorted.
func (r *Registry) topoOrder() ([]domain.KindID, error) {
	n := len(r.specs)
	indegree := make([]int, n)
	dependents := make([][]domain.KindID, n)

	for id, spec := range r.specs {
		for _, src := range spec.desc.Sources {
			indegree[id]++
			dependents[src] = append(dependents[src], domain.KindID(id))
		}
	}

	queue := make([]domain.KindID, 0, n)
	for id := 0; id < n; id++ {
		if indegree[id] == 0 {
			queue = append(queue, domain.KindID(id))
		}
	}

	sorted := make([]domain.KindID, 0, n)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		sorted = append(sorted, id)

		for _, dep := range dependents[id] {
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(sorted) < n {
		stuck := make([]string, 0, n-len(sorted))
		for id := 0; id < n; id++ {
			if indegree[id] > 0 {
				stuck = append(stuck, r.specs[id].desc.Name)
			}
		}
		return nil, &domain.CycleError{Kinds: stuck}
	}

	order := make([]domain.KindID, 0, n)
	for _, id := range sorted {
		if r.specs[id].desc.Variant != domain.VariantPrimary {
			order = append(order, id)
		}
	}
	return order, nil
}

// Order returns the cached topological order of sub and computed kinds.
func (r *Registry) Order() []domain.KindID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.order
}

func (r *Registry) Frozen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frozen
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.specs)
}

// Spec returns the registration record for a kind. The returned spec is
// read-only after Freeze.
func (r *Registry) Spec(id domain.KindID) (*kindSpec, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id < 0 || int(id) >= len(r.specs) {
		return nil, false
	}
	return r.specs[id], true
}

// Lookup resolves a kind name to its ID.
func (r *Registry) Lookup(name string) (domain.KindID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byName[name]
	return id, ok
}

// Descriptors returns a copy of every registered kind's descriptor, in
// registration order.
func (r *Registry) Descriptors() []domain.Descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Descriptor, len(r.specs))
	for i, spec := range r.specs {
		out[i] = spec.desc
		out[i].Sources = append([]domain.KindID(nil), spec.desc.Sources...)
	}
	return out
}
