package ports_test

import (
	"context"
	"testing"

	"github.com/Git0Shuai/bevy/pkg/domain"
	"github.com/Git0Shuai/bevy/pkg/ports"
)

// MockSnapshotStore is an in-memory implementation of SnapshotStore for
// testing purposes.
type MockSnapshotStore struct {
	data map[string]domain.Snapshot
}

func NewMockSnapshotStore() *MockSnapshotStore {
	return &MockSnapshotStore{
		data: make(map[string]domain.Snapshot),
	}
}

func (m *MockSnapshotStore) Save(ctx context.Context, name string, snap domain.Snapshot) error {
	m.data[name] = snap.Clone()
	return nil
}

func (m *MockSnapshotStore) Load(ctx context.Context, name string) (domain.Snapshot, error) {
	snap, ok := m.data[name]
	if !ok {
		return domain.Snapshot{}, domain.ErrSnapshotNotFound
	}
	return snap.Clone(), nil
}

func (m *MockSnapshotStore) Delete(ctx context.Context, name string) error {
	delete(m.data, name)
	return nil
}

func (m *MockSnapshotStore) List(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(m.data))
	for name := range m.data {
		names = append(names, name)
	}
	return names, nil
}

func TestSnapshotStore_Contract(t *testing.T) {
	// This verifies that the MockSnapshotStore complies with the store
	// contract. It serves as the reference for adapter implementations.
	ports.RunSnapshotStoreContract(t, NewMockSnapshotStore())
}

func TestSnapshotStore_MockIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMockSnapshotStore()

	snap := domain.Snapshot{States: map[string]string{"Mode": "Menu"}}
	if err := store.Save(ctx, "run-1", snap); err != nil {
		t.Fatalf("Failed to save snapshot: %v", err)
	}

	// Mutating the caller's map must not leak into the store.
	snap.States["Mode"] = "Combat"

	loaded, err := store.Load(ctx, "run-1")
	if err != nil {
		t.Fatalf("Failed to load snapshot: %v", err)
	}
	if loaded.States["Mode"] != "Menu" {
		t.Errorf("Expected stored value to be isolated from caller mutation, got %q", loaded.States["Mode"])
	}
}
