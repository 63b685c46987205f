package tests

import (
	"testing"

	"github.com/Git0Shuai/bevy/pkg/ports"
)

// WorldContractTest is a reusable test suite that verifies if an entity
// collaborator complies with ports.World.
func WorldContractTest(t *testing.T, world ports.World) {
	t.Helper()

	// 1. Test Spawn and Alive
	t.Run("Spawn_Alive", func(t *testing.T) {
		e := world.Spawn()
		if !world.Alive(e) {
			t.Fatalf("freshly spawned entity %s should be alive", e)
		}
	})

	// 2. Test deferred destruction
	t.Run("QueueDespawn_Deferred", func(t *testing.T) {
		e := world.Spawn()
		world.QueueDespawn(e)
		if !world.Alive(e) {
			t.Error("queued entity must stay alive until Flush")
		}
		world.Flush()
		if world.Alive(e) {
			t.Error("queued entity must be dead after Flush")
		}
	})

	// 3. Test idempotent destruction
	t.Run("QueueDespawn_Idempotent", func(t *testing.T) {
		e := world.Spawn()
		world.QueueDespawn(e)
		world.QueueDespawn(e)
		world.Flush()
		if world.Alive(e) {
			t.Error("entity should be dead after double queue and Flush")
		}

		// Queuing a dead handle must be a no-op, even across slot reuse.
		world.QueueDespawn(e)
		fresh := world.Spawn()
		world.Flush()
		if !world.Alive(fresh) {
			t.Error("stale handle despawn must not affect a fresh entity")
		}
	})

	// 4. Test stale generation handling
	t.Run("Generations_NoAliasing", func(t *testing.T) {
		old := world.Spawn()
		world.QueueDespawn(old)
		world.Flush()

		reused := world.Spawn()
		if world.Alive(old) {
			t.Error("stale handle should not be alive after its slot is reused")
		}
		if !world.Alive(reused) {
			t.Error("reused slot entity should be alive")
		}
	})
}
