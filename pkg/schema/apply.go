package schema

import (
	"fmt"

	"github.com/Git0Shuai/bevy"
)

// Derivations binds computed state names to the functions that derive their
// values. Every computed kind in a manifest needs exactly one entry.
type Derivations map[string]func(sources []any) (any, bool)

// Apply validates a manifest and registers its states on app in dependency
// order, so declarations may reference states that appear later in the file.
// Computed kinds take their derivation from derivations by name.
func Apply(app *bevy.App, m Manifest, derivations Derivations) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if err := checkDerivations(m, derivations); err != nil {
		return err
	}

	for _, s := range order(m.States) {
		var err error
		switch s.Kind {
		case KindPrimary:
			err = app.AddPrimaryKind(s.Name, s.Type, s.Initial)
		case KindSub:
			err = app.AddSubKind(s.Name, s.Parent, s.When, s.Type, s.Default)
		case KindComputed:
			err = app.AddComputedKind(s.Name, s.Sources, derivations[s.Name])
		}
		if err != nil {
			return fmt.Errorf("apply manifest: %w", err)
		}
	}
	return nil
}

func checkDerivations(m Manifest, derivations Derivations) error {
	var errs []error
	computed := make(map[string]bool)
	for _, s := range m.States {
		if s.Kind != KindComputed {
			continue
		}
		computed[s.Name] = true
		if derivations[s.Name] == nil {
			errs = append(errs, &ValidationError{State: s.Name, Reason: "no derivation bound"})
		}
	}
	for name := range derivations {
		if !computed[name] {
			errs = append(errs, &ValidationError{State: name, Reason: "derivation does not match any computed state"})
		}
	}
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// order sorts the states so every parent and source precedes its dependents,
// preserving declaration order among independent states. The manifest has
// already been validated, so the sort always completes.
func order(states []StateSpec) []StateSpec {
	byName := make(map[string]StateSpec, len(states))
	indegree := make(map[string]int, len(states))
	for _, s := range states {
		byName[s.Name] = s
		indegree[s.Name] = 0
	}
	dependents := make(map[string][]string, len(states))
	for _, s := range states {
		for _, dep := range dependencies(s) {
			indegree[s.Name]++
			dependents[dep] = append(dependents[dep], s.Name)
		}
	}

	queue := make([]string, 0, len(states))
	for _, s := range states {
		if indegree[s.Name] == 0 {
			queue = append(queue, s.Name)
		}
	}
	out := make([]StateSpec, 0, len(states))
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		out = append(out, byName[name])
		for _, dep := range dependents[name] {
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}
	return out
}
