// Package metrics provides observability for the attendance policy engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks admission decisions and their latency. A nil receiver is a
// no-op so unit tests can skip metric registration.
type Metrics struct {
	CheckIns         *prometheus.CounterVec
	CheckOuts        *prometheus.CounterVec
	Rejections       *prometheus.CounterVec
	CheckInDuration  prometheus.Histogram
	CheckOutDuration prometheus.Histogram
}

// New creates a Metrics instance with all attendance metrics registered.
func New() *Metrics {
	return &Metrics{
		CheckIns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hadir_checkins_total",
			Help: "Successful check-ins by resulting status",
		}, []string{"status"}),
		CheckOuts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hadir_checkouts_total",
			Help: "Successful check-outs by resulting status",
		}, []string{"status"}),
		Rejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hadir_punch_rejections_total",
			Help: "Rejected check-in/out attempts by reason",
		}, []string{"operation", "reason"}),
		CheckInDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "hadir_checkin_duration_seconds",
			Help:    "Duration of check-in processing",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		CheckOutDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "hadir_checkout_duration_seconds",
			Help:    "Duration of check-out processing",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementCheckIn records a successful check-in.
func (m *Metrics) IncrementCheckIn(status string) {
	if m == nil {
		return
	}
	m.CheckIns.WithLabelValues(status).Inc()
}

// IncrementCheckOut records a successful check-out.
func (m *Metrics) IncrementCheckOut(status string) {
	if m == nil {
		return
	}
	m.CheckOuts.WithLabelValues(status).Inc()
}

// IncrementRejection records a rejected attempt.
func (m *Metrics) IncrementRejection(operation, reason string) {
	if m == nil {
		return
	}
	m.Rejections.WithLabelValues(operation, reason).Inc()
}

// ObserveCheckIn records check-in latency from start.
func (m *Metrics) ObserveCheckIn(start time.Time) {
	if m == nil {
		return
	}
	m.CheckInDuration.Observe(time.Since(start).Seconds())
}

// ObserveCheckOut records check-out latency from start.
func (m *Metrics) ObserveCheckOut(start time.Time) {
	if m == nil {
		return
	}
	m.CheckOutDuration.Observe(time.Since(start).Seconds())
}
