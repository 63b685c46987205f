package memory

import (
	"context"
	"sync"

	"github.com/Git0Shuai/bevy/pkg/domain"
)

// Journal implements ports.TransitionJournal in memory.
// Safe for concurrent use.
type Journal struct {
	records []domain.Transition
	mu      sync.RWMutex
}

// NewJournal creates a new in-memory transition journal.
func NewJournal() *Journal {
	return &Journal{}
}

// Append stores the records of one pass in order.
func (j *Journal) Append(ctx context.Context, records []domain.Transition) error {
	if len(records) == 0 {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, records...)
	return nil
}

// List returns stored records in append order. A positive limit keeps only
// the most recent records.
func (j *Journal) List(ctx context.Context, limit int) ([]domain.Transition, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	start := 0
	if limit > 0 && len(j.records) > limit {
		start = len(j.records) - limit
	}

	// Copy on read so the caller can't mutate journal state
	out := make([]domain.Transition, len(j.records)-start)
	copy(out, j.records[start:])
	return out, nil
}
