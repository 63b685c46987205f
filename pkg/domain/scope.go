package domain

// Polarity selects which edge of a state value's lifetime triggers scoped
// cleanup.
const (
	// OnExit cleans up the tagged resource when the value stops being
	// current.
	OnExit Polarity = iota
	// OnEnter cleans up the tagged resource when the value becomes
	// current.
	OnEnter
)

// Polarity is the cleanup direction of a Scope.
type Polarity uint8

func (p Polarity) String() string {
	switch p {
	case OnExit:
		return "on_exit"
	case OnEnter:
		return "on_enter"
	default:
		return "unknown"
	}
}

// Scope ties an entity or an event topic to a specific state value. When the
// pass produces a transition whose edge matches the polarity, the tagged
// resource is queued for cleanup.
type Scope struct {
	Kind     KindID
	Value    any
	Polarity Polarity
}
