package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CommerceMetrics records outcomes of the commerce rules engine.
type CommerceMetrics struct {
	reservations       *prometheus.CounterVec
	resolutionDuration *prometheus.HistogramVec
	resolutionOutcomes *prometheus.CounterVec
}

// NewCommerceMetrics registers the commerce metrics on the provided registerer.
func NewCommerceMetrics(reg prometheus.Registerer) *CommerceMetrics {
	if reg == nil {
		return &CommerceMetrics{}
	}
	reservations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_reservations_total",
		Help: "Reservation attempts by outcome.",
	}, []string{"outcome"})
	resolutionDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "price_resolution_duration_seconds",
		Help:    "Duration of price resolutions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"currency"})
	resolutionOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "price_resolutions_total",
		Help: "Price resolutions by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(reservations, resolutionDuration, resolutionOutcomes)
	return &CommerceMetrics{
		reservations:       reservations,
		resolutionDuration: resolutionDuration,
		resolutionOutcomes: resolutionOutcomes,
	}
}

// IncReservation increments the reservation counter for the named outcome.
func (c *CommerceMetrics) IncReservation(outcome string) {
	if c == nil || c.reservations == nil {
		return
	}
	c.reservations.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveResolution records the duration of a price resolution.
func (c *CommerceMetrics) ObserveResolution(currency string, duration time.Duration) {
	if c == nil || c.resolutionDuration == nil {
		return
	}
	c.resolutionDuration.WithLabelValues(normalizeLabel(currency)).Observe(duration.Seconds())
}

// IncResolution increments the resolution counter for the named outcome.
func (c *CommerceMetrics) IncResolution(outcome string) {
	if c == nil || c.resolutionOutcomes == nil {
		return
	}
	c.resolutionOutcomes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
