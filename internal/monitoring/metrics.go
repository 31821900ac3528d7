package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Bookings successfully created",
		},
	)

	payments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Payment attempts by outcome",
		},
		[]string{"outcome"},
	)

	bookingsCancelled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookings_cancelled_total",
			Help: "Bookings cancelled, user-initiated or reaped",
		},
	)

	reapResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reaper_bookings_total",
			Help: "Bookings processed by the expiry sweep",
		},
		[]string{"status"},
	)

	reapDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reaper_sweep_duration_seconds",
			Help:    "Duration of expiry sweeps",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		},
	)
)

func BookingCreated() {
	bookingsCreated.Inc()
}

// PaymentProcessed records a payment attempt outcome: succeeded, replayed,
// rejected or expired.
func PaymentProcessed(outcome string) {
	payments.WithLabelValues(outcome).Inc()
}

func BookingCancelled() {
	bookingsCancelled.Inc()
}

func ReapSweep(succeeded, failed int, d time.Duration) {
	reapResults.WithLabelValues("cancelled").Add(float64(succeeded))
	reapResults.WithLabelValues("failed").Add(float64(failed))
	reapDuration.Observe(d.Seconds())
}
