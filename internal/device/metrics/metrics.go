// Package metrics provides observability for the device trust registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks device registration and verification outcomes. A nil
// receiver is a no-op so unit tests can skip metric registration.
type Metrics struct {
	Registered         prometheus.Counter
	VerifyOutcomes     *prometheus.CounterVec
	CapacityRejections prometheus.Counter
}

// New creates a Metrics instance with all device metrics registered.
func New() *Metrics {
	return &Metrics{
		Registered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hadir_devices_registered_total",
			Help: "Total number of devices registered",
		}),
		VerifyOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hadir_device_verifications_total",
			Help: "Device verification attempts by outcome",
		}, []string{"outcome"}),
		CapacityRejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hadir_device_capacity_rejections_total",
			Help: "Registrations rejected by the per-user device cap",
		}),
	}
}

// IncrementRegistered records a successful device registration.
func (m *Metrics) IncrementRegistered() {
	if m == nil {
		return
	}
	m.Registered.Inc()
}

// IncrementVerify records one verification attempt by outcome label.
func (m *Metrics) IncrementVerify(outcome string) {
	if m == nil {
		return
	}
	m.VerifyOutcomes.WithLabelValues(outcome).Inc()
}

// IncrementCapacityRejected records a cap rejection.
func (m *Metrics) IncrementCapacityRejected() {
	if m == nil {
		return
	}
	m.CapacityRejections.Inc()
}
