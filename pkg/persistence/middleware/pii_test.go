package middleware_test

import (
	"context"
	"testing"

	"github.com/Git0Shuai/bevy/pkg/adapters/memory"
	"github.com/Git0Shuai/bevy/pkg/domain"
	"github.com/Git0Shuai/bevy/pkg/persistence/middleware"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	// Setup
	underlyingStore := memory.NewStore()
	// Mask states whose name mentions an email or a token
	mw := middleware.NewPIIMiddleware([]string{"(?i)email", "Token"})
	secureStore := mw(underlyingStore)

	ctx := context.Background()
	snap := domain.Snapshot{States: map[string]string{
		"Mode":        "Combat",
		"PlayerEmail": "jdoe@example.com",
		"AuthToken":   "secret123",
		"Level":       "3",
	}}

	// 1. Save
	if err := secureStore.Save(ctx, "pii", snap); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Verify the in-memory snapshot is NOT MODIFIED (Immutability check)
	if snap.States["AuthToken"] != "secret123" {
		t.Error("Middleware modified original snapshot in memory!")
	}

	// 2. Load from the Underlying Store (Should be masked)
	stored, err := underlyingStore.Load(ctx, "pii")
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}

	// Check masking
	if stored.States["Mode"] != "Combat" {
		t.Error("Mode shouldn't be masked")
	}
	if stored.States["Level"] != "3" {
		t.Error("Level shouldn't be masked")
	}
	if stored.States["PlayerEmail"] != "***" {
		t.Errorf("Email should be masked, got: %v", stored.States["PlayerEmail"])
	}
	if stored.States["AuthToken"] != "***" {
		t.Errorf("Token should be masked, got: %v", stored.States["AuthToken"])
	}
}
