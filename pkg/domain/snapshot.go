package domain

import "time"

// Snapshot captures the primary state values of an app at one point in time.
// Values are encoded as strings by the codec of each kind, so a snapshot can
// be persisted and restored across processes. Sub and computed kinds are not
// captured; they are re-derived when the snapshot is restored.
type Snapshot struct {
	TakenAt time.Time         `json:"taken_at"`
	States  map[string]string `json:"states"`
}

// Clone returns a deep copy so callers can hold a snapshot without aliasing
// store internals.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{TakenAt: s.TakenAt, States: make(map[string]string, len(s.States))}
	for k, v := range s.States {
		out.States[k] = v
	}
	return out
}
