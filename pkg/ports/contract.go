package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Git0Shuai/bevy/pkg/domain"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a
// SnapshotStore implementation adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	name := "contract-test-snapshot-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		snap := domain.Snapshot{
			TakenAt: time.Now().UTC().Truncate(time.Second),
			States:  map[string]string{"Mode": "Combat", "Volume": "7"},
		}

		err := store.Save(ctx, name, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "Combat", loaded.States["Mode"])
		assert.Equal(t, "7", loaded.States["Volume"])
		assert.False(t, loaded.TakenAt.IsZero(), "TakenAt should survive persistence")
	})

	t.Run("Save Replaces", func(t *testing.T) {
		first := domain.Snapshot{States: map[string]string{"Mode": "Menu"}}
		second := domain.Snapshot{States: map[string]string{"Mode": "Combat"}}

		require.NoError(t, store.Save(ctx, name, first))
		require.NoError(t, store.Save(ctx, name, second))

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, "Combat", loaded.States["Mode"], "second Save should win")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, name, domain.Snapshot{States: map[string]string{"Mode": "Menu"}})
		require.NoError(t, err)

		err = store.Delete(ctx, name)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, name)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")
	})

	t.Run("List", func(t *testing.T) {
		n1 := name + "-1"
		n2 := name + "-2"
		_ = store.Save(ctx, n1, domain.Snapshot{States: map[string]string{"Mode": "Menu"}})
		_ = store.Save(ctx, n2, domain.Snapshot{States: map[string]string{"Mode": "Combat"}})

		defer func() {
			_ = store.Delete(ctx, n1)
			_ = store.Delete(ctx, n2)
		}()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, n1)
		assert.Contains(t, names, n2)
	})
}
