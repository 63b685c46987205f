package domain

import (
	"encoding/json"
	"fmt"
)

// Optional wraps a state value that may be absent. Sub and computed kinds are
// absent while their parent predicate or sources do not hold; primary kinds
// are always present after registration.
type Optional struct {
	Value any
	Valid bool
}

// Some wraps a present value.
func Some(v any) Optional {
	return Optional{Value: v, Valid: true}
}

// None is the absent value.
func None() Optional {
	return Optional{}
}

func (o Optional) String() string {
	if !o.Valid {
		return "<absent>"
	}
	return fmt.Sprint(o.Value)
}

// MarshalJSON encodes absent values as null.
func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Transition records one kind's change during a single pass. At most one
// record per kind exists per pass; records are replaced wholesale when the
// next pass begins.
type Transition struct {
	Kind KindID   `json:"kind"`
	Name string   `json:"name"`
	From Optional `json:"from"`
	To   Optional `json:"to"`

	// Pass is the 1-based sequence number of the pass that produced this
	// record.
	Pass uint64 `json:"pass"`
}

// Entered reports whether the kind is present after the transition.
func (t Transition) Entered() bool { return t.To.Valid }

// Exited reports whether the kind was present before the transition.
func (t Transition) Exited() bool { return t.From.Valid }

func (t Transition) String() string {
	return fmt.Sprintf("%s: %s -> %s (pass %d)", t.Name, t.From, t.To, t.Pass)
}
