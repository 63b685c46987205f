package domain

// KindID is the dense index of a registered state kind. IDs are assigned in
// registration order and are stable for the lifetime of the app.
type KindID int

// Variant constants define how a kind's value is produced.
const (
	// VariantPrimary is mutated only through explicit requests.
	VariantPrimary Variant = iota
	// VariantSub exists only while a predicate over its parent holds.
	VariantSub
	// VariantComputed is derived from one or more source kinds.
	VariantComputed
)

// Variant is the closed set of state kind behaviors.
type Variant uint8

func (v Variant) String() string {
	switch v {
	case VariantPrimary:
		return "primary"
	case VariantSub:
		return "sub"
	case VariantComputed:
		return "computed"
	default:
		return "unknown"
	}
}

// Descriptor describes a registered state kind.
type Descriptor struct {
	ID      KindID  `json:"id"`
	Name    string  `json:"name"`
	Variant Variant `json:"variant"`

	// Sources lists the kinds this one depends on: exactly one parent for a
	// sub kind, one or more sources for a computed kind, none for a primary.
	Sources []KindID `json:"sources,omitempty"`
}
