package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicateKind is returned when a kind name is registered twice.
var ErrDuplicateKind = errors.New("state kind already registered")

// ErrUnknownKind is returned when a name or ID does not match any registered kind.
var ErrUnknownKind = errors.New("unknown state kind")

// ErrNotPrimary is returned by name-based mutation surfaces when the target
// kind is a sub or computed kind. The typed API makes this unrepresentable.
var ErrNotPrimary = errors.New("state kind is not primary")

// ErrFrozen is returned when a kind is registered after Build.
var ErrFrozen = errors.New("state graph is frozen")

// ErrNotBuilt is returned when the app is ticked before Build.
var ErrNotBuilt = errors.New("state graph not built")

// ErrNoSources is returned when a computed kind is registered with no sources.
var ErrNoSources = errors.New("computed state kind requires at least one source")

// ErrNilPredicate is returned when a sub kind is registered without a parent predicate.
var ErrNilPredicate = errors.New("sub state kind requires a parent predicate")

// ErrNilDerivation is returned when a computed kind is registered without a derivation.
var ErrNilDerivation = errors.New("computed state kind requires a derivation")

// ErrNoCodec is returned when a snapshot is requested for a kind whose value
// type has no string codec.
var ErrNoCodec = errors.New("state kind has no string codec")

// ErrBadEncoding is returned when a persisted state value cannot be decoded.
var ErrBadEncoding = errors.New("malformed state value encoding")

// ErrSnapshotNotFound is returned when a snapshot name cannot be found in the store.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrNoSnapshotStore is returned by Save and Load when the app was built
// without a snapshot store.
var ErrNoSnapshotStore = errors.New("no snapshot store configured")

// CycleError reports a dependency cycle among state kinds. The graph is
// rejected at build time; the runtime never orders a cyclic graph.
type CycleError struct {
	Kinds []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle between state kinds: %s", strings.Join(e.Kinds, ", "))
}
