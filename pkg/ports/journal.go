package ports

import (
	"context"

	"github.com/Git0Shuai/bevy/pkg/domain"
)

// TransitionJournal defines the interface for an append-only audit trail of
// transition records. The app forwards every pass's records in production
// order; implementations decide retention.
type TransitionJournal interface {
	// Append stores the records of one pass, preserving their order.
	Append(ctx context.Context, records []domain.Transition) error

	// List returns stored records in append order. A positive limit keeps
	// only the most recent records; zero or less returns everything.
	List(ctx context.Context, limit int) ([]domain.Transition, error)
}
