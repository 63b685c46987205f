package schema

import (
	"fmt"
	"strconv"

	"github.com/Git0Shuai/bevy/pkg/domain"
)

// Validate checks a manifest before it is applied: duplicate or missing
// names, unknown kind variants, per-variant field rules, references to
// undeclared states and dependency cycles. All failures are collected into an
// AggregateError so a broken manifest is reported in one round.
func (m Manifest) Validate() error {
	var errs []error

	byName := make(map[string]StateSpec, len(m.States))
	for _, s := range m.States {
		if s.Name == "" {
			errs = append(errs, &ValidationError{Reason: "missing state name"})
			continue
		}
		if _, dup := byName[s.Name]; dup {
			errs = append(errs, &ValidationError{State: s.Name, Reason: "declared twice"})
			continue
		}
		byName[s.Name] = s
		errs = append(errs, variantErrors(s)...)
	}

	// Reference checks need the full name set, so they run in a second pass.
	for name, s := range byName {
		switch s.Kind {
		case KindSub:
			if s.Parent != "" {
				if _, ok := byName[s.Parent]; !ok {
					errs = append(errs, &ValidationError{State: name, Reason: fmt.Sprintf("parent %q is not declared", s.Parent)})
				}
			}
		case KindComputed:
			for _, src := range s.Sources {
				if _, ok := byName[src]; !ok {
					errs = append(errs, &ValidationError{State: name, Reason: fmt.Sprintf("source %q is not declared", src)})
				}
			}
		}
	}

	if cyclic := findCycle(m.States, byName); len(cyclic) > 0 {
		errs = append(errs, &domain.CycleError{Kinds: cyclic})
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

func variantErrors(s StateSpec) []error {
	var errs []error
	fail := func(reason string) {
		errs = append(errs, &ValidationError{State: s.Name, Reason: reason})
	}

	switch s.Kind {
	case KindPrimary:
		if s.Parent != "" || len(s.When) > 0 {
			fail("primary kind does not take a parent")
		}
		if len(s.Sources) > 0 {
			fail("primary kind does not take sources")
		}
		if s.Default != "" {
			fail("primary kind takes an initial value, not a default")
		}
		if reason := valueReason(s.Type, "initial", s.Initial); reason != "" {
			fail(reason)
		}
	case KindSub:
		if s.Parent == "" {
			fail("sub kind requires a parent")
		}
		if len(s.When) == 0 {
			fail("sub kind requires at least one when value")
		}
		if len(s.Sources) > 0 {
			fail("sub kind does not take sources")
		}
		if s.Initial != "" {
			fail("sub kind takes a default, not an initial value")
		}
		if reason := valueReason(s.Type, "default", s.Default); reason != "" {
			fail(reason)
		}
	case KindComputed:
		if len(s.Sources) == 0 {
			fail("computed kind requires at least one source")
		}
		if s.Parent != "" || len(s.When) > 0 {
			fail("computed kind does not take a parent")
		}
		if s.Type != "" {
			fail("computed kind does not declare a type")
		}
		if s.Initial != "" || s.Default != "" {
			fail("computed kind does not take a value")
		}
	default:
		fail(fmt.Sprintf("unknown kind variant %q", s.Kind))
	}
	return errs
}

// valueReason reports why an encoded value does not fit the declared type, or
// an empty string when it does. An empty type means string, where any value
// is acceptable.
func valueReason(typ, field, value string) string {
	var err error
	switch typ {
	case "", "string":
		return ""
	case "bool":
		_, err = strconv.ParseBool(value)
	case "int":
		_, err = strconv.ParseInt(value, 10, 64)
	case "float":
		_, err = strconv.ParseFloat(value, 64)
	default:
		return fmt.Sprintf("unsupported type %q", typ)
	}
	if err != nil {
		return fmt.Sprintf("%s %q is not a valid %s", field, value, typ)
	}
	return ""
}

// findCycle runs Kahn's algorithm over the declared dependency edges and
// returns the names left unordered, in declaration order. Edges to undeclared
// states are skipped; the reference checks already report those.
func findCycle(states []StateSpec, byName map[string]StateSpec) []string {
	indegree := make(map[string]int, len(byName))
	dependents := make(map[string][]string, len(byName))
	for name := range byName {
		indegree[name] = 0
	}
	for name, s := range byName {
		for _, dep := range dependencies(s) {
			if _, ok := byName[dep]; !ok {
				continue
			}
			indegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	queue := make([]string, 0, len(byName))
	seeded := make(map[string]bool, len(byName))
	for _, s := range states {
		if seeded[s.Name] {
			continue
		}
		seeded[s.Name] = true
		if deg, ok := indegree[s.Name]; ok && deg == 0 {
			queue = append(queue, s.Name)
		}
	}
	ordered := 0
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		ordered++
		for _, dep := range dependents[name] {
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}
	if ordered == len(byName) {
		return nil
	}

	var cyclic []string
	seen := make(map[string]bool, len(byName))
	for _, s := range states {
		if seen[s.Name] {
			continue
		}
		seen[s.Name] = true
		if indegree[s.Name] > 0 {
			cyclic = append(cyclic, s.Name)
		}
	}
	return cyclic
}

func dependencies(s StateSpec) []string {
	switch s.Kind {
	case KindSub:
		if s.Parent == "" {
			return nil
		}
		return []string{s.Parent}
	case KindComputed:
		return s.Sources
	default:
		return nil
	}
}
