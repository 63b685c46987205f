package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Git0Shuai/bevy/pkg/domain"
)

// PrometheusObserver exports engine activity as Prometheus metrics.
//
// Exposed series:
//
//	bevy_passes_total               counter
//	bevy_transitions_total          counter, labeled by state kind
//	bevy_pass_duration_seconds      histogram
//	bevy_system_runs_total          counter, labeled by system and outcome
type PrometheusObserver struct {
	passes       prometheus.Counter
	transitions  *prometheus.CounterVec
	passDuration prometheus.Histogram
	systemRuns   *prometheus.CounterVec
}

// NewPrometheusObserver creates an Observer whose metrics are registered on
// reg. If reg is nil, prometheus.DefaultRegisterer is used. Registration
// panics on duplicate collectors, so create at most one per registry.
func NewPrometheusObserver(reg prometheus.Registerer) *PrometheusObserver {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	o := &PrometheusObserver{
		passes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bevy_passes_total",
			Help: "Total number of completed transition passes",
		}),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bevy_transitions_total",
				Help: "Total number of recorded state transitions",
			},
			[]string{"kind"},
		),
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bevy_pass_duration_seconds",
			Help:    "Duration of transition passes including callback phases",
			Buckets: prometheus.DefBuckets,
		}),
		systemRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bevy_system_runs_total",
				Help: "Total number of gated system executions",
			},
			[]string{"system", "outcome"},
		),
	}
	reg.MustRegister(o.passes, o.transitions, o.passDuration, o.systemRuns)
	return o
}

func (o *PrometheusObserver) OnPassStart(ctx context.Context, pass uint64) {}

func (o *PrometheusObserver) OnTransition(ctx context.Context, tr domain.Transition) {
	o.transitions.WithLabelValues(tr.Name).Inc()
}

func (o *PrometheusObserver) OnPassCompleted(ctx context.Context, pass uint64, n int, d time.Duration) {
	o.passes.Inc()
	o.passDuration.Observe(d.Seconds())
}

func (o *PrometheusObserver) OnSystemRun(ctx context.Context, name string, err error, d time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	o.systemRuns.WithLabelValues(name, outcome).Inc()
}
