package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusObserver_RecordsSeries(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	o := NewPrometheusObserver(reg)

	o.OnPassStart(ctx, 1)
	o.OnTransition(ctx, sampleTransition())
	o.OnTransition(ctx, sampleTransition())
	o.OnPassCompleted(ctx, 1, 2, 5*time.Millisecond)
	o.OnSystemRun(ctx, "hud", nil, time.Millisecond)
	o.OnSystemRun(ctx, "hud", errors.New("boom"), time.Millisecond)

	if got := testutil.ToFloat64(o.passes); got != 1 {
		t.Fatalf("bevy_passes_total=%v, want 1", got)
	}
	if got := testutil.ToFloat64(o.transitions.WithLabelValues("Mode")); got != 2 {
		t.Fatalf("bevy_transitions_total{kind=Mode}=%v, want 2", got)
	}
	if got := testutil.ToFloat64(o.systemRuns.WithLabelValues("hud", "ok")); got != 1 {
		t.Fatalf(`bevy_system_runs_total{system=hud,outcome=ok}=%v, want 1`, got)
	}
	if got := testutil.ToFloat64(o.systemRuns.WithLabelValues("hud", "error")); got != 1 {
		t.Fatalf(`bevy_system_runs_total{system=hud,outcome=error}=%v, want 1`, got)
	}
}

func TestNewPrometheusObserver_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := NewPrometheusObserver(reg)

	o.OnPassCompleted(context.Background(), 1, 0, time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{"bevy_passes_total", "bevy_pass_duration_seconds"} {
		if !names[want] {
			t.Fatalf("expected gathered family %q, got %v", want, names)
		}
	}
}
