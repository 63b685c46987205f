package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Git0Shuai/bevy/pkg/adapters/file"
	"github.com/Git0Shuai/bevy/pkg/domain"
	"github.com/Git0Shuai/bevy/pkg/ports"
)

// Ensure Store implements SnapshotStore
var _ ports.SnapshotStore = (*file.Store)(nil)

func TestStore_Contract(t *testing.T) {
	store := file.New(t.TempDir())
	ports.RunSnapshotStoreContract(t, store)
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first := file.New(dir)
	snap := domain.Snapshot{States: map[string]string{"Mode": "Combat", "Level": "9"}}
	if err := first.Save(ctx, "checkpoint", snap); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// A fresh instance over the same directory sees the snapshot.
	second := file.New(dir)
	loaded, err := second.Load(ctx, "checkpoint")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.States["Mode"] != "Combat" || loaded.States["Level"] != "9" {
		t.Errorf("unexpected snapshot content: %+v", loaded.States)
	}
}

func TestStore_EmptyName(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	if err := store.Save(ctx, "", domain.Snapshot{}); err == nil {
		t.Error("expected error for empty name on Save")
	}
	if _, err := store.Load(ctx, ""); err == nil {
		t.Error("expected error for empty name on Load")
	}
}

func TestStore_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	if err := store.Save(ctx, "one", domain.Snapshot{States: map[string]string{"Mode": "Menu"}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, "one", domain.Snapshot{States: map[string]string{"Mode": "Combat"}}); err != nil {
		t.Fatalf("overwrite Save failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" && e.Name() != "one.json" {
			t.Errorf("unexpected file left behind: %s", e.Name())
		}
	}
}
