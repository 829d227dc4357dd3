package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestBookingMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveBooking("web")
	m.ObserveBooking("web")
	m.ObserveRejection("slot_unavailable")
	m.ObserveRejection("stock_conflict")
	m.ObserveTransition("CONFIRMED", "IN_ATTENTION")
	m.ObserveLatency("create", 0.02)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookingsTotal.WithLabelValues("web")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejectionsTotal.WithLabelValues("slot_unavailable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stockConflicts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("CONFIRMED", "IN_ATTENTION")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.opLatency))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *BookingMetrics
	assert.NotPanics(t, func() {
		m.ObserveBooking("web")
		m.ObserveRejection("x")
		m.ObserveTransition("a", "b")
		m.ObserveLatency("op", 1)
	})
}
