package memory_test

import (
	"testing"

	"github.com/Git0Shuai/bevy/pkg/adapters/memory"
	contract "github.com/Git0Shuai/bevy/pkg/ports/tests"
)

func TestWorld_Contract(t *testing.T) {
	contract.WorldContractTest(t, memory.NewWorld())
}

func TestWorld_SlotReuse(t *testing.T) {
	w := memory.NewWorld()

	first := w.Spawn()
	w.QueueDespawn(first)
	w.Flush()

	second := w.Spawn()
	if second.Index != first.Index {
		t.Fatalf("expected freed slot %d to be reused, got %d", first.Index, second.Index)
	}
	if second.Gen == first.Gen {
		t.Error("reused slot must carry a new generation")
	}
	if w.Len() != 1 {
		t.Errorf("expected 1 live entity, got %d", w.Len())
	}
}

func TestWorld_EventTopics(t *testing.T) {
	w := memory.NewWorld()

	w.Emit("combat/damage", 12)
	w.Emit("combat/damage", 30)
	w.Emit("ui/clicks", "ok")

	if got := len(w.Events("combat/damage")); got != 2 {
		t.Fatalf("expected 2 buffered events, got %d", got)
	}

	// A queued clear must not take effect until Flush.
	w.QueueClearEvents("combat/damage")
	if got := len(w.Events("combat/damage")); got != 2 {
		t.Errorf("queued clear applied early, %d events left", got)
	}

	w.Flush()
	if got := len(w.Events("combat/damage")); got != 0 {
		t.Errorf("expected cleared topic, got %d events", got)
	}
	if got := len(w.Events("ui/clicks")); got != 1 {
		t.Errorf("unrelated topic should survive, got %d events", got)
	}
}
