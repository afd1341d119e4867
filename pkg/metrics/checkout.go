package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records the multi-seller checkout flow.
type CheckoutMetrics struct {
	splitDuration *prometheus.HistogramVec
	splits        *prometheus.CounterVec
	sessions      *prometheus.CounterVec
	planEvents    *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	splitDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_split_duration_seconds",
		Help:    "Duration of multi-seller split initiation in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	splits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_splits_total",
		Help: "Multi-seller split initiations by outcome.",
	}, []string{"outcome"})
	sessions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_sessions_total",
		Help: "Per-session checkout completions by outcome.",
	}, []string{"outcome"})
	planEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_plan_events_total",
		Help: "Plan lifecycle events (resumed, discarded, finished, abandoned).",
	}, []string{"event"})
	reg.MustRegister(splitDuration, splits, sessions, planEvents)
	return &CheckoutMetrics{
		splitDuration: splitDuration,
		splits:        splits,
		sessions:      sessions,
		planEvents:    planEvents,
	}
}

// ObserveSplitDuration records how long a split initiation took.
func (c *CheckoutMetrics) ObserveSplitDuration(outcome string, duration time.Duration) {
	if c == nil || c.splitDuration == nil {
		return
	}
	c.splitDuration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncSplit increments the split counter for the given outcome.
func (c *CheckoutMetrics) IncSplit(outcome string) {
	if c == nil || c.splits == nil {
		return
	}
	c.splits.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncSession increments the per-session completion counter.
func (c *CheckoutMetrics) IncSession(outcome string) {
	if c == nil || c.sessions == nil {
		return
	}
	c.sessions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncPlanEvent increments the plan lifecycle counter.
func (c *CheckoutMetrics) IncPlanEvent(event string) {
	if c == nil || c.planEvents == nil {
		return
	}
	c.planEvents.WithLabelValues(normalizeLabel(event)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
