package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics expõe contadores do fluxo de agendamento. Um ponteiro nil
// é válido e não registra nada.
type BookingMetrics struct {
	bookingsTotal   *prometheus.CounterVec
	rejectionsTotal *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	stockConflicts  prometheus.Counter
	opLatency       *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vet",
			Subsystem: "booking",
			Name:      "appointments_created_total",
			Help:      "Appointments created, by origin channel",
		}, []string{"channel"}),
		rejectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vet",
			Subsystem: "booking",
			Name:      "rejections_total",
			Help:      "Booking and transition failures, by error code",
		}, []string{"code"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vet",
			Subsystem: "booking",
			Name:      "transitions_total",
			Help:      "Appointment state transitions applied",
		}, []string{"from", "to"}),
		stockConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vet",
			Subsystem: "inventory",
			Name:      "stock_conflicts_total",
			Help:      "Fulfilments rejected for insufficient critical stock",
		}),
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vet",
			Subsystem: "booking",
			Name:      "operation_seconds",
			Help:      "Latency of booking engine operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.rejectionsTotal, m.transitions, m.stockConflicts, m.opLatency)
	return m
}

func (m *BookingMetrics) ObserveBooking(channel string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(channel).Inc()
}

func (m *BookingMetrics) ObserveRejection(code string) {
	if m == nil {
		return
	}
	m.rejectionsTotal.WithLabelValues(code).Inc()
	if code == "stock_conflict" {
		m.stockConflicts.Inc()
	}
}

func (m *BookingMetrics) ObserveTransition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

func (m *BookingMetrics) ObserveLatency(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.opLatency.WithLabelValues(operation).Observe(seconds)
}
