package observability

import (
	"context"

	"github.com/mygenetics/reportnav/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "reportnav"

// Metrics holds the navigator's Prometheus collectors.
type Metrics struct {
	Registry *prometheus.Registry

	ScreenVisits   *prometheus.CounterVec
	Transitions    *prometheus.CounterVec
	Outcomes       *prometheus.CounterVec
	AdvanceLatency prometheus.Histogram
	RenderFailures *prometheus.CounterVec
	Escalations    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on a private registry,
// together with the Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		ScreenVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "screen_visits_total",
				Help:      "Total number of screen visits",
			},
			[]string{"screen"},
		),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transitions_total",
				Help:      "Total number of transitions by action",
			},
			[]string{"from", "action"},
		),
		Outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "advance_outcomes_total",
				Help:      "Advance calls by outcome",
			},
			[]string{"outcome"},
		),
		AdvanceLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "advance_duration_seconds",
				Help:      "Duration of advance calls, including session I/O",
				Buckets:   prometheus.DefBuckets,
			},
		),
		RenderFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "render_failures_total",
				Help:      "Content references that could not be rendered",
			},
			[]string{"content"},
		),
		Escalations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "question_escalations_total",
				Help:      "Free-text questions handed to the answerer",
			},
			[]string{"result"},
		),
	}

	m.Registry.MustRegister(
		m.ScreenVisits,
		m.Transitions,
		m.Outcomes,
		m.AdvanceLatency,
		m.RenderFailures,
		m.Escalations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Hooks returns lifecycle hooks recording into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			m.ScreenVisits.WithLabelValues(string(e.To)).Inc()
			m.Transitions.WithLabelValues(string(e.From), metricAction(e.Action)).Inc()
		},
		OnOutcome: func(_ context.Context, e *domain.OutcomeEvent) {
			m.Outcomes.WithLabelValues(string(e.Outcome)).Inc()
			m.AdvanceLatency.Observe(e.Duration.Seconds())
		},
		OnRenderFailure: func(_ context.Context, e *domain.RenderFailureEvent) {
			m.RenderFailures.WithLabelValues(string(e.Content)).Inc()
		},
	}
}

// RecordEscalation counts one answerer call. ok is false when it failed.
func (m *Metrics) RecordEscalation(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	m.Escalations.WithLabelValues(result).Inc()
}

// metricAction bounds label cardinality to the known action vocabulary.
func metricAction(l domain.ActionLabel) string {
	if _, ok := l.Section(); ok {
		return string(l)
	}
	switch l {
	case domain.ActionBack, domain.ActionForward, domain.ActionMoreDetails,
		domain.ActionConfirm, domain.ActionAskQuestion, domain.ActionFreeText:
		return string(l)
	case "":
		return "restart"
	}
	return "other"
}
