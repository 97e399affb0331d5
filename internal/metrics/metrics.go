package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	evaluations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ureserve",
			Name:      "window_evaluations_total",
			Help:      "Count of reservation window evaluations by resulting state.",
		},
		[]string{"state"},
	)

	activeCountdowns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ureserve",
			Name:      "active_countdowns",
			Help:      "Number of reservation rows currently ticking.",
		},
	)

	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ureserve",
			Name:      "api_requests_total",
			Help:      "Count of requests to the reservation API by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)

	reservationsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ureserve",
			Name:      "reservations_created_total",
			Help:      "Count of reservations created by facility type.",
		},
		[]string{"type"},
	)

	reportsExported = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ureserve",
			Name:      "reports_exported_total",
			Help:      "Count of administrative reports exported.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(evaluations, activeCountdowns, apiRequests, reservationsCreated, reportsExported)
	})
}

func IncEvaluation(state string) {
	evaluations.WithLabelValues(state).Inc()
}

func SetActiveCountdowns(n int) {
	activeCountdowns.Set(float64(n))
}

func IncAPIRequest(endpoint, outcome string) {
	apiRequests.WithLabelValues(endpoint, outcome).Inc()
}

func IncReservationCreated(typeCode string) {
	reservationsCreated.WithLabelValues(typeCode).Inc()
}

func IncReportExported() {
	reportsExported.Inc()
}
