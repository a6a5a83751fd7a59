package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lendit",
			Name:      "booking_operations_total",
			Help:      "Booking lifecycle operations by outcome.",
		},
		[]string{"op"},
	)

	bookingConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lendit",
			Name:      "booking_conflicts_total",
			Help:      "Booking requests rejected by the availability check.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lendit",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingOps, bookingConflicts, httpRequests)
	})
}

// IncBookingOp increments the lifecycle counter for an operation label.
func IncBookingOp(op string) {
	bookingOps.WithLabelValues(op).Inc()
}

// IncBookingConflict counts an availability rejection.
func IncBookingConflict() {
	bookingConflicts.Inc()
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}
