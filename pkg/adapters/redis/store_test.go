package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/Git0Shuai/bevy/pkg/adapters/redis"
	"github.com/Git0Shuai/bevy/pkg/domain"
	"github.com/Git0Shuai/bevy/pkg/ports"
)

func TestRedisStore_Contract(t *testing.T) {
	// Setup miniredis
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	store := redis.NewFromClient(client)
	ports.RunSnapshotStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	// Create store with 1s TTL
	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	name := "autosave"
	snap := domain.Snapshot{
		TakenAt: time.Now().UTC(),
		States:  map[string]string{"Mode": "Combat"},
	}

	// 1. Save
	err = store.Save(ctx, name, snap)
	assert.NoError(t, err)

	// 2. Verify List (immediately)
	names, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, names, name)

	// 3. Fast Forward time in miniredis (for Key Expiration)
	mr.FastForward(2 * time.Second)

	// 4. Verify Load (should fail)
	_, err = store.Load(ctx, name)
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)

	// 5. Verify List (lazily cleaned up). The index score comes from
	// time.Now(), which miniredis does not fast-forward, so wait out the
	// real TTL before pruning.
	time.Sleep(1200 * time.Millisecond)

	names, err = store.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, names)
}

func TestRedisStore_PrefixIsolation(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	a := redis.NewFromClient(client, redis.WithPrefix("gameA:"))
	b := redis.NewFromClient(client, redis.WithPrefix("gameB:"))
	ctx := context.Background()

	snap := domain.Snapshot{States: map[string]string{"Mode": "Menu"}}
	assert.NoError(t, a.Save(ctx, "slot", snap))

	_, err = b.Load(ctx, "slot")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)

	names, err := b.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, names)
}
