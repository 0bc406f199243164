package observability

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/stepflow/pkg/validate"
)

// Metrics holds the validator collectors.
type Metrics struct {
	Passes       *prometheus.CounterVec
	PassDuration prometheus.Histogram
	Invalid      *prometheus.CounterVec
	HookCalls    *prometheus.CounterVec
	HookDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Passes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepflow_validation_passes_total",
				Help: "Total number of validation passes, by outcome",
			},
			[]string{"ok"},
		),
		PassDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stepflow_validation_pass_duration_seconds",
				Help:    "Duration of validation passes",
				Buckets: prometheus.DefBuckets,
			},
		),
		Invalid: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepflow_validation_errors_total",
				Help: "Total number of recorded validation errors, by kind",
			},
			[]string{"kind"},
		),
		HookCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepflow_validate_hook_calls_total",
				Help: "Total number of operator validate hook calls",
			},
			[]string{"operator", "result"},
		),
		HookDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stepflow_validate_hook_duration_seconds",
				Help:    "Duration of operator validate hook calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operator"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.Passes, m.PassDuration, m.Invalid, m.HookCalls, m.HookDuration)
	}
	return m
}

// Hooks returns validator hooks that record into m.
func (m *Metrics) Hooks() validate.Hooks {
	return validate.Hooks{
		OnPassEnd: func(_ context.Context, e *validate.PassEvent) {
			m.Passes.WithLabelValues(strconv.FormatBool(e.OK)).Inc()
			m.PassDuration.Observe(e.Duration.Seconds())
		},
		OnInvalid: func(_ context.Context, e *validate.InvalidEvent) {
			m.Invalid.WithLabelValues(string(e.Kind)).Inc()
		},
		OnHookCall: func(_ context.Context, e *validate.HookEvent) {
			m.HookCalls.WithLabelValues(e.Operator, hookResult(e)).Inc()
			m.HookDuration.WithLabelValues(e.Operator).Observe(e.Duration.Seconds())
		},
	}
}

func hookResult(e *validate.HookEvent) string {
	switch {
	case e.Panicked:
		return "panic"
	case e.Error != "":
		return "error"
	case e.OK:
		return "valid"
	default:
		return "invalid"
	}
}
