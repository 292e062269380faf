package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReserveDuration tracks the latency of number reservations, the hot
	// path during a sale.
	ReserveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "raffle_reserve_duration_seconds",
			Help:    "Duration of number reservation requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		},
		[]string{"status"}, // success, conflict or failed
	)

	// PurchaseDuration tracks purchase submissions.
	PurchaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "raffle_purchase_duration_seconds",
			Help:    "Duration of purchase creation requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		},
		[]string{"status"},
	)

	// ValidationsTotal counts admin decisions by outcome.
	ValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raffle_purchase_validations_total",
			Help: "Number of admin purchase validations by decision and result",
		},
		[]string{"decision", "status"},
	)
)

// RecordReserveDuration records the duration of a reservation request.
func RecordReserveDuration(status string, duration float64) {
	ReserveDuration.WithLabelValues(status).Observe(duration)
}

// RecordPurchaseDuration records the duration of a purchase creation request.
func RecordPurchaseDuration(status string, duration float64) {
	PurchaseDuration.WithLabelValues(status).Observe(duration)
}

// RecordValidation counts one admin validation outcome.
func RecordValidation(decision, status string) {
	ValidationsTotal.WithLabelValues(decision, status).Inc()
}
