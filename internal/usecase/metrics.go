package usecase

import (
	"errors"

	"github.com/St1cky1/ticket-generator/internal/entity"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	IntakeTotal      *prometheus.CounterVec
	SubmissionsTotal *prometheus.CounterVec
	TicketsIssued    prometheus.Counter
	ActiveSessions   prometheus.Gauge
	EvictedSessions  prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		IntakeTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "avatar_intake_total", Help: "Avatar intake attempts by source and outcome."},
			[]string{"source", "outcome"},
		),
		SubmissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "ticket_submissions_total", Help: "Ticket form submissions by outcome."},
			[]string{"outcome"},
		),
		TicketsIssued: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "tickets_issued_total", Help: "Tickets issued."},
		),
		ActiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "form_sessions_active", Help: "Open form sessions."},
		),
		EvictedSessions: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "form_sessions_evicted_total", Help: "Form sessions evicted by the session cap."},
		),
	}
	reg.MustRegister(m.IntakeTotal, m.SubmissionsTotal, m.TicketsIssued, m.ActiveSessions, m.EvictedSessions)
	return m
}

func (m *Metrics) intake(source IntakeSource, err error) {
	if m == nil {
		return
	}
	m.IntakeTotal.WithLabelValues(string(source), Outcome(err)).Inc()
}

func (m *Metrics) submission(err error) {
	if m == nil {
		return
	}
	m.SubmissionsTotal.WithLabelValues(Outcome(err)).Inc()
	if err == nil {
		m.TicketsIssued.Inc()
	}
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}

func (m *Metrics) SessionEvicted() {
	if m == nil {
		return
	}
	m.EvictedSessions.Inc()
}

// Outcome - метка результата операции для метрик и ответов API
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, entity.ErrEmptySelection):
		return "empty_selection"
	case errors.Is(err, entity.ErrInvalidType):
		return "invalid_type"
	case errors.Is(err, entity.ErrTooLarge):
		return "too_large"
	case errors.Is(err, entity.ErrFieldsInvalid):
		return "fields_invalid"
	case errors.Is(err, entity.ErrAlreadyConfirmed):
		return "already_confirmed"
	case errors.Is(err, entity.ErrUnknownField):
		return "unknown_field"
	default:
		return "error"
	}
}
