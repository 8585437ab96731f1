package metrics

import "github.com/prometheus/client_golang/prometheus"

// IntakeMetrics exposes counters/histograms for the intake conversation.
type IntakeMetrics struct {
	turnsTotal       *prometheus.CounterVec
	turnLatency      prometheus.Histogram
	stageTransitions *prometheus.CounterVec
	bookingsTotal    *prometheus.CounterVec
	formsTotal       *prometheus.CounterVec
}

func NewIntakeMetrics(reg prometheus.Registerer) *IntakeMetrics {
	m := &IntakeMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intake",
			Subsystem: "conversation",
			Name:      "turns_total",
			Help:      "Total processed user turns",
		}, []string{"outcome"}),
		turnLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "intake",
			Subsystem: "conversation",
			Name:      "turn_latency_seconds",
			Help:      "Time to process one user turn, extraction calls included",
			Buckets:   prometheus.DefBuckets,
		}),
		stageTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intake",
			Subsystem: "conversation",
			Name:      "stage_transitions_total",
			Help:      "Stage changes made by the dialogue state machine",
		}, []string{"from", "to"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intake",
			Subsystem: "booking",
			Name:      "attempts_total",
			Help:      "Booking attempts by result",
		}, []string{"status", "patient_type"}),
		formsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intake",
			Subsystem: "notify",
			Name:      "intake_forms_total",
			Help:      "Intake form emails by result",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.turnLatency, m.stageTransitions, m.bookingsTotal, m.formsTotal)
	return m
}

func (m *IntakeMetrics) ObserveTurn(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(outcome).Inc()
	m.turnLatency.Observe(seconds)
}

func (m *IntakeMetrics) ObserveTransition(from, to string) {
	if m == nil || from == to {
		return
	}
	m.stageTransitions.WithLabelValues(from, to).Inc()
}

func (m *IntakeMetrics) ObserveBooking(status string, newPatient bool) {
	if m == nil {
		return
	}
	patientType := "returning"
	if newPatient {
		patientType = "new"
	}
	m.bookingsTotal.WithLabelValues(status, patientType).Inc()
}

func (m *IntakeMetrics) ObserveIntakeForm(sent bool) {
	if m == nil {
		return
	}
	status := "sent"
	if !sent {
		status = "failed"
	}
	m.formsTotal.WithLabelValues(status).Inc()
}
