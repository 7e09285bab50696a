package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Commit outcomes.
const (
	OutcomeConfirmed = "confirmed"
	OutcomeConflict  = "conflict"
	OutcomeInvalid   = "invalid"
	OutcomeError     = "error"
)

type Metrics struct {
	Commits              *prometheus.CounterVec
	CommitLatency        prometheus.Histogram
	AvailabilityRequests *prometheus.CounterVec
	Transitions          *prometheus.CounterVec
	NotificationFailures *prometheus.CounterVec
}

// New registers the booking metrics on reg. A nil reg uses a private
// registry, which keeps tests independent of the global one.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		Commits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "golfbay",
			Subsystem: "booking",
			Name:      "commits_total",
			Help:      "Booking commit attempts by outcome",
		}, []string{"outcome"}),
		CommitLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "golfbay",
			Subsystem: "booking",
			Name:      "commit_duration_seconds",
			Help:      "Time spent committing a booking",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		AvailabilityRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "golfbay",
			Subsystem: "booking",
			Name:      "availability_requests_total",
			Help:      "Availability queries by result",
		}, []string{"result"}),
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "golfbay",
			Subsystem: "booking",
			Name:      "transitions_total",
			Help:      "Booking state changes by action",
		}, []string{"action"}),
		NotificationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "golfbay",
			Subsystem: "booking",
			Name:      "notification_failures_total",
			Help:      "Confirmation notifications that could not be delivered",
		}, []string{"notifier"}),
	}
}

func (m *Metrics) ObserveCommit(outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.Commits.WithLabelValues(outcome).Inc()
	m.CommitLatency.Observe(time.Since(started).Seconds())
}

func (m *Metrics) ObserveAvailability(result string) {
	if m == nil {
		return
	}
	m.AvailabilityRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveTransition(action string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(action).Inc()
}

func (m *Metrics) ObserveNotificationFailure(notifier string) {
	if m == nil {
		return
	}
	m.NotificationFailures.WithLabelValues(notifier).Inc()
}
