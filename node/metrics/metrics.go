// Package metrics exposes Prometheus collectors for the launch manager.
package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Launch outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeFailed   = "failed"
	OutcomeVetoed   = "vetoed"
	OutcomeCanceled = "canceled"
)

// Metrics groups the collectors of one manager. Each instance owns its
// registry so several managers can coexist in a process or a test.
type Metrics struct {
	registry *prometheus.Registry

	launches      *prometheus.CounterVec
	checks        *prometheus.CounterVec
	agentFailures *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	inFlight      prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		launches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "covlaunch_launches_total",
				Help: "Launches handled by the manager, by launch type, mode and outcome",
			},
			[]string{"type", "mode", "outcome"},
		),
		checks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "covlaunch_lifecycle_checks_total",
				Help: "Lifecycle checks issued before launches, by check and result",
			},
			[]string{"check", "result"},
		),
		agentFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "covlaunch_agent_unavailable_total",
				Help: "Launches aborted because the coverage agent could not be materialized",
			},
			[]string{"type"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "covlaunch_launch_duration_seconds",
				Help:    "Time from launch request until the delegate returned",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
			},
			[]string{"type", "mode"},
		),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "covlaunch_launches_in_flight",
			Help: "Launches currently running",
		}),
	}
	m.registry.MustRegister(m.launches, m.checks, m.agentFailures, m.duration, m.inFlight)
	return m
}

func (m *Metrics) LaunchStarted() { m.inFlight.Inc() }

// LaunchFinished records the outcome and duration of one launch.
func (m *Metrics) LaunchFinished(launchType, mode, outcome string, elapsed time.Duration) {
	m.inFlight.Dec()
	m.launches.WithLabelValues(launchType, mode, outcome).Inc()
	m.duration.WithLabelValues(launchType, mode).Observe(elapsed.Seconds())
}

// Check records the result of a build, pre-launch or final-launch check.
// A failed check is recorded with result "error".
func (m *Metrics) Check(check string, ok bool, err error) {
	result := "true"
	switch {
	case err != nil:
		result = "error"
	case !ok:
		result = "false"
	}
	m.checks.WithLabelValues(check, result).Inc()
}

func (m *Metrics) AgentUnavailable(launchType string) {
	m.agentFailures.WithLabelValues(launchType).Inc()
}

// WriteText writes every collected metric in the Prometheus text format.
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	if closer, ok := enc.(expfmt.Closer); ok {
		return closer.Close()
	}
	return nil
}
