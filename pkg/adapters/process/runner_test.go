package process_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/Git0Shuai/bevy/pkg/adapters/process"
	"github.com/Git0Shuai/bevy/pkg/domain"
)

// fakeSource is a minimal ValueSource with two kinds, one absent.
type fakeSource struct{}

func (fakeSource) Descriptors() []domain.Descriptor {
	return []domain.Descriptor{
		{ID: 0, Name: "Mode", Variant: domain.VariantPrimary},
		{ID: 1, Name: "Paused", Variant: domain.VariantSub, Sources: []domain.KindID{0}},
	}
}

func (fakeSource) Value(kind string) (string, bool) {
	if kind == "Mode" {
		return "Combat", true
	}
	return "", false
}

func requirePosixShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestRunner_ExportsStateEnvironment(t *testing.T) {
	requirePosixShell(t)

	dir := t.TempDir()
	r := process.NewRunner(fakeSource{}, process.WithBaseDir(dir))
	r.Register("dump", "sh", "-c", `printf '%s' "$BEVY_STATE_MODE" > mode.txt; printf '%s' "${BEVY_STATE_PAUSED-unset}" > paused.txt`)

	if err := r.Run(context.Background(), "dump"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	mode, err := os.ReadFile(filepath.Join(dir, "mode.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(mode) != "Combat" {
		t.Errorf("expected BEVY_STATE_MODE=Combat, got %q", mode)
	}

	// Absent kinds must not leak empty variables.
	paused, err := os.ReadFile(filepath.Join(dir, "paused.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(paused) != "unset" {
		t.Errorf("expected BEVY_STATE_PAUSED to be unset, got %q", paused)
	}
}

func TestRunner_NotRegistered(t *testing.T) {
	r := process.NewRunner(nil)
	err := r.Run(context.Background(), "ghost")
	if err == nil || !strings.Contains(err.Error(), "not registered") {
		t.Errorf("expected not registered error, got %v", err)
	}
}

func TestRunner_FailureIncludesStderr(t *testing.T) {
	requirePosixShell(t)

	r := process.NewRunner(nil)
	r.Register("boom", "sh", "-c", "echo kaboom >&2; exit 3")

	err := r.Run(context.Background(), "boom")
	if err == nil {
		t.Fatal("expected error for failing process")
	}
	if !strings.Contains(err.Error(), "kaboom") {
		t.Errorf("expected stderr in error, got %v", err)
	}
}

func TestRunner_SystemWiring(t *testing.T) {
	requirePosixShell(t)

	dir := t.TempDir()
	r := process.NewRunner(nil, process.WithBaseDir(dir))
	r.Register("touch", "sh", "-c", "printf ran > ran.txt")

	sys := r.System("touch")
	if err := sys(context.Background()); err != nil {
		t.Fatalf("system failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "ran.txt")); err != nil {
		t.Errorf("expected system to run the process: %v", err)
	}
}
