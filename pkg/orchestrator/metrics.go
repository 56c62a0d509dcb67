package orchestrator

import (
	"github.com/aretw0/readiness/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records step and stage outcomes on a dedicated registry.
type Metrics struct {
	registry      *prometheus.Registry
	stepDuration  *prometheus.HistogramVec
	stepFailures  *prometheus.CounterVec
	stageVerdicts *prometheus.CounterVec
	stageReady    *prometheus.GaugeVec
}

// NewMetrics creates and registers the readiness collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "readiness_step_duration_seconds",
				Help:    "Duration of orchestrated step executions",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
			},
			[]string{"step"},
		),
		stepFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "readiness_step_failures_total",
				Help: "Total number of failed step executions",
			},
			[]string{"step"},
		),
		stageVerdicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "readiness_stage_verdicts_total",
				Help: "Total number of stage reports by verdict",
			},
			[]string{"stage", "verdict"},
		),
		stageReady: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "readiness_stage_ready",
				Help: "Whether the current report of a stage is ready-class (1) or not (0)",
			},
			[]string{"stage"},
		),
	}
	m.registry.MustRegister(m.stepDuration, m.stepFailures, m.stageVerdicts, m.stageReady)
	return m
}

// Registry exposes the collectors, e.g. to promhttp.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveStep records one finished execution.
func (m *Metrics) ObserveStep(e domain.Execution, seconds float64) {
	m.stepDuration.WithLabelValues(e.Step.ID).Observe(seconds)
	if !e.OK {
		m.stepFailures.WithLabelValues(e.Step.ID).Inc()
	}
}

// ObserveVerdict records the verdict of a written stage report.
func (m *Metrics) ObserveVerdict(stage string, v domain.Verdict) {
	m.stageVerdicts.WithLabelValues(stage, v.OrUnknown()).Inc()
}

// SetCurrent records the verdict currently on disk for a stage.
func (m *Metrics) SetCurrent(stage string, v domain.Verdict) {
	ready := 0.0
	if v.IsReadyClass() {
		ready = 1
	}
	m.stageReady.WithLabelValues(stage).Set(ready)
}

// WriteTextfile writes the current metrics in the node exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
