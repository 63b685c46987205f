package ports

import (
	"context"

	"github.com/Git0Shuai/bevy/pkg/domain"
)

// SnapshotStore defines the interface for persisting primary state snapshots.
// This allows for durable state, enabling "stop and resume" across processes.
type SnapshotStore interface {
	// Save persists the snapshot under the given name, replacing any
	// previous snapshot with that name.
	Save(ctx context.Context, name string, snap domain.Snapshot) error

	// Load retrieves the snapshot with the given name.
	// Returns domain.ErrSnapshotNotFound if it does not exist.
	Load(ctx context.Context, name string) (domain.Snapshot, error)

	// Delete removes the snapshot with the given name.
	Delete(ctx context.Context, name string) error

	// List returns the names of all stored snapshots.
	List(ctx context.Context) ([]string, error)
}
