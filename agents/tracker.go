package agents

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SpecialistActivity is a point-in-time view of one specialist's work.
type SpecialistActivity struct {
	Attempts     int
	Successes    int
	LastActive   time.Time
	TotalElapsed time.Duration
}

// Tracker records per-specialist activity for observability: Prometheus
// metrics for scrapers plus an in-process snapshot for run reports.
type Tracker struct {
	attempts *prometheus.CounterVec
	duration *prometheus.HistogramVec

	mu       sync.Mutex
	activity map[string]SpecialistActivity
}

// NewTracker registers the pipeline metrics with reg. A nil registerer gets
// a private registry, which keeps tests and multiple pipelines independent.
func NewTracker(reg prometheus.Registerer) *Tracker {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &Tracker{
		attempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "remedy_fix_attempts_total",
				Help: "Fix attempts per specialist and outcome",
			},
			[]string{"specialist", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "remedy_fix_duration_seconds",
				Help:    "Duration of specialist fix attempts",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"specialist"},
		),
		activity: make(map[string]SpecialistActivity),
	}
}

// RecordAttempt registers one specialist invocation.
func (t *Tracker) RecordAttempt(specialist string, success bool, elapsed time.Duration) {
	if t == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	t.attempts.WithLabelValues(specialist, outcome).Inc()
	t.duration.WithLabelValues(specialist).Observe(elapsed.Seconds())

	t.mu.Lock()
	defer t.mu.Unlock()
	act := t.activity[specialist]
	act.Attempts++
	if success {
		act.Successes++
	}
	act.LastActive = time.Now().UTC()
	act.TotalElapsed += elapsed
	t.activity[specialist] = act
}

// Snapshot copies the current per-specialist activity.
func (t *Tracker) Snapshot() map[string]SpecialistActivity {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]SpecialistActivity, len(t.activity))
	for name, act := range t.activity {
		out[name] = act
	}
	return out
}
