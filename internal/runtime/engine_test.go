package runtime_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Git0Shuai/bevy/internal/logging"
	"github.com/Git0Shuai/bevy/internal/runtime"
	"github.com/Git0Shuai/bevy/pkg/adapters/memory"
	"github.com/Git0Shuai/bevy/pkg/domain"
)

// buildModeGraph wires the canonical demo graph: primary Mode, sub Paused
// (exists while Mode==Combat, activates to false), computed ShowHUD
// (Mode==Combat && !Paused).
func buildModeGraph(t *testing.T, e *runtime.Engine) (mode, paused, hud domain.KindID) {
	t.Helper()

	codec, ok := runtime.DefaultCodec(reflect.TypeOf(""))
	require.True(t, ok)

	mode, err := e.AddPrimary("Mode", "Menu", codec, true)
	require.NoError(t, err)

	paused, err = e.AddSub("Paused", mode, func(parent any) bool {
		return parent == "Combat"
	}, false)
	require.NoError(t, err)

	hud, err = e.AddComputed("ShowHUD", []domain.KindID{mode, paused}, func(src []any) (any, bool) {
		return src[0] == "Combat" && src[1] == false, true
	})
	require.NoError(t, err)

	require.NoError(t, e.Build())
	return mode, paused, hud
}

func TestEngine_OrderingChain(t *testing.T) {
	e := runtime.NewEngine(logging.NewNop())
	mode, paused, hud := buildModeGraph(t, e)
	w := memory.NewWorld()

	require.NoError(t, e.Request(mode, "Combat"))

	records, err := e.Pass(w)
	require.NoError(t, err)
	require.Len(t, records, 3, "primary, sub and computed should all change")

	assert.Equal(t, "Mode", records[0].Name)
	assert.Equal(t, domain.Some("Menu"), records[0].From)
	assert.Equal(t, domain.Some("Combat"), records[0].To)

	assert.Equal(t, "Paused", records[1].Name)
	assert.False(t, records[1].From.Valid, "sub state was absent before activation")
	assert.Equal(t, domain.Some(false), records[1].To, "activation value is the declared default")

	assert.Equal(t, "ShowHUD", records[2].Name)
	assert.False(t, records[2].From.Valid)
	assert.Equal(t, domain.Some(true), records[2].To, "computed state sees the sub's new value in the same sweep")

	v, present := e.Get(paused)
	require.True(t, present)
	assert.Equal(t, false, v)

	v, present = e.Get(hud)
	require.True(t, present)
	assert.Equal(t, true, v)
}

func TestEngine_FixedPoint(t *testing.T) {
	e := runtime.NewEngine(logging.NewNop())
	mode, _, _ := buildModeGraph(t, e)
	w := memory.NewWorld()

	require.NoError(t, e.Request(mode, "Combat"))
	_, err := e.Pass(w)
	require.NoError(t, err)

	// A second pass with no new requests must be a no-op.
	records, err := e.Pass(w)
	require.NoError(t, err)
	assert.Empty(t, records, "re-running the sweep must produce zero records")
}

func TestEngine_LastWriteWins(t *testing.T) {
	e := runtime.NewEngine(logging.NewNop())
	mode, _, _ := buildModeGraph(t, e)
	w := memory.NewWorld()

	require.NoError(t, e.Request(mode, "Combat"))
	require.NoError(t, e.Request(mode, "Arena"))

	records, err := e.Pass(w)
	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.Equal(t, domain.Some("Arena"), records[0].To, "second request supersedes the first")

	modeRecords := 0
	for _, r := range records {
		if r.Name == "Mode" {
			modeRecords++
		}
	}
	assert.Equal(t, 1, modeRecords, "exactly one record per kind per pass")
}

func TestEngine_RequestEqualToCurrent(t *testing.T) {
	e := runtime.NewEngine(logging.NewNop())
	mode, _, _ := buildModeGraph(t, e)
	w := memory.NewWorld()

	require.NoError(t, e.Request(mode, "Menu"))
	records, err := e.Pass(w)
	require.NoError(t, err)
	assert.Empty(t, records, "identity request must not produce a record")
}

func TestEngine_AbsencePropagation(t *testing.T) {
	e := runtime.NewEngine(logging.NewNop())
	mode, paused, hud := buildModeGraph(t, e)
	w := memory.NewWorld()

	require.NoError(t, e.Request(mode, "Combat"))
	_, err := e.Pass(w)
	require.NoError(t, err)

	require.NoError(t, e.Request(mode, "Menu"))
	records, err := e.Pass(w)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "Paused", records[1].Name)
	assert.Equal(t, domain.Some(false), records[1].From)
	assert.False(t, records[1].To.Valid, "sub must deactivate with its parent predicate")

	assert.Equal(t, "ShowHUD", records[2].Name)
	assert.False(t, records[2].To.Valid, "computed must be absent when a source is absent")

	_, present := e.Get(paused)
	assert.False(t, present)
	_, present = e.Get(hud)
	assert.False(t, present)
}

func TestEngine_SubReactivationUsesDefault(t *testing.T) {
	e := runtime.NewEngine(logging.NewNop())
	mode, paused, _ := buildModeGraph(t, e)
	w := memory.NewWorld()

	for _, target := range []string{"Combat", "Menu", "Combat"} {
		require.NoError(t, e.Request(mode, target))
		_, err := e.Pass(w)
		require.NoError(t, err)
	}

	v, present := e.Get(paused)
	require.True(t, present)
	assert.Equal(t, false, v, "a sub state reactivates with its declared default, not a remembered value")

	tr, ok := e.LastTransition(paused)
	require.True(t, ok)
	assert.False(t, tr.From.Valid, "reactivation record starts from absent")
}

func TestEngine_ComputedDeclines(t *testing.T) {
	e := runtime.NewEngine(logging.NewNop())

	codec, _ := runtime.DefaultCodec(reflect.TypeOf(0))
	score, err := e.AddPrimary("Score", 0, codec, true)
	require.NoError(t, err)

	// Tier only exists for positive scores, even though its source always does.
	_, err = e.AddComputed("Tier", []domain.KindID{score}, func(src []any) (any, bool) {
		n := src[0].(int)
		if n <= 0 {
			return nil, false
		}
		return n / 100, true
	})
	require.NoError(t, err)
	require.NoError(t, e.Build())

	w := memory.NewWorld()
	_, err = e.Pass(w)
	require.NoError(t, err)

	tier, _ := e.Lookup("Tier")
	_, present := e.Get(tier)
	assert.False(t, present, "declined derivation leaves the kind absent")

	require.NoError(t, e.Request(score, 250))
	records, err := e.Pass(w)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, domain.Some(2), records[1].To)
}

func TestEngine_SingleSweepDeepChain(t *testing.T) {
	e := runtime.NewEngine(logging.NewNop())

	codec, _ := runtime.DefaultCodec(reflect.TypeOf(0))
	base, err := e.AddPrimary("Base", 1, codec, true)
	require.NoError(t, err)

	double, err := e.AddComputed("Double", []domain.KindID{base}, func(src []any) (any, bool) {
		return src[0].(int) * 2, true
	})
	require.NoError(t, err)

	quad, err := e.AddComputed("Quad", []domain.KindID{double}, func(src []any) (any, bool) {
		return src[0].(int) * 2, true
	})
	require.NoError(t, err)

	_, err = e.AddComputed("Sum", []domain.KindID{base, double, quad}, func(src []any) (any, bool) {
		return src[0].(int) + src[1].(int) + src[2].(int), true
	})
	require.NoError(t, err)
	require.NoError(t, e.Build())

	w := memory.NewWorld()
	_, err = e.Pass(w)
	require.NoError(t, err)

	require.NoError(t, e.Request(base, 10))
	records, err := e.Pass(w)
	require.NoError(t, err)
	require.Len(t, records, 4, "one sweep must settle the whole chain")

	sum, _ := e.Lookup("Sum")
	v, present := e.Get(sum)
	require.True(t, present)
	assert.Equal(t, 10+20+40, v, "values must match a from-scratch re-derivation")

	records, err = e.Pass(w)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestEngine_ChangedCondition(t *testing.T) {
	e := runtime.NewEngine(logging.NewNop())
	mode, paused, _ := buildModeGraph(t, e)
	w := memory.NewWorld()

	assert.False(t, e.Changed(mode), "nothing changed before the first pass")

	require.NoError(t, e.Request(mode, "Combat"))
	_, err := e.Pass(w)
	require.NoError(t, err)
	assert.True(t, e.Changed(mode))
	assert.True(t, e.Changed(paused))

	_, err = e.Pass(w)
	require.NoError(t, err)
	assert.False(t, e.Changed(mode), "a quiet pass clears the changed flag")
	assert.False(t, e.Changed(paused))
}

func TestEngine_ScopedCleanupExactness(t *testing.T) {
	e := runtime.NewEngine(logging.NewNop())
	mode, _, _ := buildModeGraph(t, e)
	w := memory.NewWorld()

	require.NoError(t, e.Request(mode, "Combat"))
	_, err := e.Pass(w)
	require.NoError(t, err)

	enemy := w.Spawn()
	e.ScopeEntity(enemy, domain.Scope{Kind: mode, Value: "Combat", Polarity: domain.OnExit})

	// Passes that stay in Combat never touch the entity.
	for i := 0; i < 3; i++ {
		_, err = e.Pass(w)
		require.NoError(t, err)
		w.Flush()
		require.True(t, w.Alive(enemy), "entity must survive passes where its scope holds")
	}

	// Leaving Combat queues the despawn; the entity dies at the drain.
	require.NoError(t, e.Request(mode, "Menu"))
	_, err = e.Pass(w)
	require.NoError(t, err)
	assert.True(t, w.Alive(enemy), "cleanup is deferred, not in place")
	w.Flush()
	assert.False(t, w.Alive(enemy))

	// Re-entering and leaving again must not fire the consumed tag.
	require.NoError(t, e.Request(mode, "Combat"))
	_, err = e.Pass(w)
	require.NoError(t, err)
	require.NoError(t, e.Request(mode, "Menu"))
	_, err = e.Pass(w)
	require.NoError(t, err)
	w.Flush()
}

func TestEngine_ScopedCleanupOnEnter(t *testing.T) {
	e := runtime.NewEngine(logging.NewNop())
	mode, _, _ := buildModeGraph(t, e)
	w := memory.NewWorld()

	splash := w.Spawn()
	e.ScopeEntity(splash, domain.Scope{Kind: mode, Value: "Combat", Polarity: domain.OnEnter})

	// Staying outside the value never fires the enter edge.
	_, err := e.Pass(w)
	require.NoError(t, err)
	w.Flush()
	require.True(t, w.Alive(splash))

	require.NoError(t, e.Request(mode, "Combat"))
	_, err = e.Pass(w)
	require.NoError(t, err)
	w.Flush()
	assert.False(t, w.Alive(splash), "despawn-on-enter fires when the value becomes current")
}

func TestEngine_ScopedTopicClear(t *testing.T) {
	e := runtime.NewEngine(logging.NewNop())
	mode, _, _ := buildModeGraph(t, e)
	w := memory.NewWorld()

	require.NoError(t, e.Request(mode, "Combat"))
	_, err := e.Pass(w)
	require.NoError(t, err)

	e.ScopeTopic("combat/damage", domain.Scope{Kind: mode, Value: "Combat", Polarity: domain.OnExit})
	w.Emit("combat/damage", 42)
	w.Emit("combat/damage", 7)

	// Quiet pass: buffer untouched.
	_, err = e.Pass(w)
	require.NoError(t, err)
	w.Flush()
	require.Len(t, w.Events("combat/damage"), 2)

	require.NoError(t, e.Request(mode, "Menu"))
	_, err = e.Pass(w)
	require.NoError(t, err)
	w.Flush()
	assert.Empty(t, w.Events("combat/damage"), "scoped topic clears when its state exits")

	// Topic scopes stay armed: refill and exit again.
	require.NoError(t, e.Request(mode, "Combat"))
	_, err = e.Pass(w)
	require.NoError(t, err)
	w.Emit("combat/damage", 99)
	require.NoError(t, e.Request(mode, "Menu"))
	_, err = e.Pass(w)
	require.NoError(t, err)
	w.Flush()
	assert.Empty(t, w.Events("combat/damage"))
}

func TestEngine_RequestValidation(t *testing.T) {
	e := runtime.NewEngine(logging.NewNop())
	_, paused, hud := buildModeGraph(t, e)

	err := e.Request(paused, true)
	assert.ErrorIs(t, err, domain.ErrNotPrimary, "sub kinds are not settable")

	err = e.Request(hud, false)
	assert.ErrorIs(t, err, domain.ErrNotPrimary, "computed kinds are not settable")

	err = e.Request(domain.KindID(99), "x")
	assert.ErrorIs(t, err, domain.ErrUnknownKind)

	err = e.RequestDecoded("Nope", "1")
	assert.ErrorIs(t, err, domain.ErrUnknownKind)

	err = e.RequestDecoded("Paused", "true")
	assert.ErrorIs(t, err, domain.ErrNotPrimary)
}

func TestEngine_PassBeforeBuild(t *testing.T) {
	e := runtime.NewEngine(logging.NewNop())
	codec, _ := runtime.DefaultCodec(reflect.TypeOf(""))
	_, err := e.AddPrimary("Mode", "Menu", codec, true)
	require.NoError(t, err)

	_, err = e.Pass(memory.NewWorld())
	assert.ErrorIs(t, err, domain.ErrNotBuilt)
}

func TestEngine_RequestBeforeBuildAppliesOnFirstPass(t *testing.T) {
	e := runtime.NewEngine(logging.NewNop())
	codec, _ := runtime.DefaultCodec(reflect.TypeOf(""))
	mode, err := e.AddPrimary("Mode", "Menu", codec, true)
	require.NoError(t, err)

	require.NoError(t, e.Request(mode, "Combat"))
	require.NoError(t, e.Build())

	records, err := e.Pass(memory.NewWorld())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.Some("Combat"), records[0].To)
}

func TestEngine_SnapshotRestore(t *testing.T) {
	e := runtime.NewEngine(logging.NewNop())
	w := memory.NewWorld()

	strCodec, _ := runtime.DefaultCodec(reflect.TypeOf(""))
	intCodec, _ := runtime.DefaultCodec(reflect.TypeOf(0))

	mode, err := e.AddPrimary("Mode", "Menu", strCodec, true)
	require.NoError(t, err)
	level, err := e.AddPrimary("Level", 1, intCodec, true)
	require.NoError(t, err)
	require.NoError(t, e.Build())

	require.NoError(t, e.Request(mode, "Combat"))
	require.NoError(t, e.Request(level, 9))
	_, err = e.Pass(w)
	require.NoError(t, err)

	snap, err := e.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "Combat", snap.States["Mode"])
	assert.Equal(t, "9", snap.States["Level"])

	// Diverge, then restore: the snapshot flows through normal passes.
	require.NoError(t, e.Request(mode, "Menu"))
	require.NoError(t, e.Request(level, 1))
	_, err = e.Pass(w)
	require.NoError(t, err)

	require.NoError(t, e.Restore(snap))
	records, err := e.Pass(w)
	require.NoError(t, err)
	require.Len(t, records, 2, "restore applies through ordinary transition records")

	v, _ := e.Get(mode)
	assert.Equal(t, "Combat", v)
	v, _ = e.Get(level)
	assert.Equal(t, 9, v)
}

func TestEngine_RestoreBadEncoding(t *testing.T) {
	e := runtime.NewEngine(logging.NewNop())
	intCodec, _ := runtime.DefaultCodec(reflect.TypeOf(0))
	_, err := e.AddPrimary("Level", 1, intCodec, true)
	require.NoError(t, err)
	require.NoError(t, e.Build())

	err = e.Restore(domain.Snapshot{States: map[string]string{"Level": "not-a-number"}})
	assert.ErrorIs(t, err, domain.ErrBadEncoding)
}

func TestEngine_LastTransitionSurvivesQuietPasses(t *testing.T) {
	e := runtime.NewEngine(logging.NewNop())
	mode, _, _ := buildModeGraph(t, e)
	w := memory.NewWorld()

	require.NoError(t, e.Request(mode, "Combat"))
	_, err := e.Pass(w)
	require.NoError(t, err)

	_, err = e.Pass(w)
	require.NoError(t, err)

	tr, ok := e.LastTransition(mode)
	require.True(t, ok)
	assert.Equal(t, domain.Some("Combat"), tr.To)
	assert.Equal(t, uint64(1), tr.Pass)
	assert.False(t, e.Changed(mode), "changed is per pass, last transition is not")
}
