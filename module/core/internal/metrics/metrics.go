package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the check-in module.
type Metrics struct {
	Validations        *prometheus.CounterVec
	AcquisitionLatency prometheus.Histogram
	AttendanceEvents   *prometheus.CounterVec
}

// New registers the collectors on reg. Tests pass a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Validations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hr_location_validations_total",
			Help: "Location validations by work location and outcome",
		}, []string{"work_location", "outcome"}),
		AcquisitionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "hr_location_acquisition_seconds",
			Help:    "Time spent waiting for a device location fix",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30},
		}),
		AttendanceEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hr_attendance_events_total",
			Help: "Recorded attendance events",
		}, []string{"event"}),
	}
}

func (m *Metrics) ObserveValidation(workLocation, outcome string, acquisition time.Duration) {
	m.Validations.WithLabelValues(workLocation, outcome).Inc()
	m.AcquisitionLatency.Observe(acquisition.Seconds())
}

func (m *Metrics) ObserveAttendance(event string) {
	m.AttendanceEvents.WithLabelValues(event).Inc()
}
