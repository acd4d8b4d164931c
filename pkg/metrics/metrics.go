// Package metrics counts executions, steps and triggers with prometheus.
package metrics

import (
	"net/http"

	"github.com/musecrm/museflow/pkg/domain"
	"github.com/musecrm/museflow/pkg/saga"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "museflow"

// Metrics is a set of collectors registered to one registry.
//
// It observes saga engines.
type Metrics struct {
	registry *prometheus.Registry

	executions   *prometheus.CounterVec
	steps        *prometheus.CounterVec
	stepAttempts *prometheus.CounterVec
	triggers     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

var _ saga.Observer = &Metrics{}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		executions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "executions_total",
			Help:      "finished executions by workflow and status",
		}, []string{"workflow", "status"}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "decided steps and branches by outcome",
		}, []string{"workflow", "step", "outcome"}),
		stepAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "step_attempts_total",
			Help:      "invocations of tasks, including retries",
		}, []string{"workflow", "step", "result"}),
		triggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triggers_total",
			Help:      "requests to start workflows by result",
		}, []string{"workflow", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "execution_duration_seconds",
			Help:      "time from creation to finish of executions",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
		}, []string{"workflow"}),
	}
	m.registry.MustRegister(
		m.executions, m.steps, m.stepAttempts, m.triggers, m.duration,
		prometheus.NewGoCollector(),
	)
	return m
}

func (m *Metrics) StepAttempted(definition string, step string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.stepAttempts.WithLabelValues(definition, step, result).Inc()
}

func (m *Metrics) StepFinished(definition string, step string, outcome domain.StepOutcome) {
	m.steps.WithLabelValues(definition, step, outcome.String()).Inc()
}

// Finished counts a finished execution.
func (m *Metrics) Finished(exec domain.Execution) {
	wf := exec.Workflow.String()
	m.executions.WithLabelValues(wf, exec.Status.String()).Inc()
	if !exec.CreatedAt.IsZero() && !exec.UpdatedAt.IsZero() {
		m.duration.WithLabelValues(wf).Observe(exec.UpdatedAt.Sub(exec.CreatedAt).Seconds())
	}
}

// Triggered counts a request to start a workflow.
//
// result is "accepted", or a short reason of refusal.
func (m *Metrics) Triggered(wt domain.WorkflowType, result string) {
	m.triggers.WithLabelValues(wt.String(), result).Inc()
}

// ExecutionsTotal returns the counter of finished executions. For tests.
func (m *Metrics) ExecutionsTotal(wt domain.WorkflowType, status domain.ExecutionStatus) prometheus.Counter {
	return m.executions.WithLabelValues(wt.String(), status.String())
}

// StepsTotal returns the counter of decided steps. For tests.
func (m *Metrics) StepsTotal(definition, step string, outcome domain.StepOutcome) prometheus.Counter {
	return m.steps.WithLabelValues(definition, step, outcome.String())
}

// StepAttemptsTotal returns the counter of task invocations. For tests.
func (m *Metrics) StepAttemptsTotal(definition, step, result string) prometheus.Counter {
	return m.stepAttempts.WithLabelValues(definition, step, result)
}

// TriggersTotal returns the counter of trigger requests. For tests.
func (m *Metrics) TriggersTotal(wt domain.WorkflowType, result string) prometheus.Counter {
	return m.triggers.WithLabelValues(wt.String(), result)
}

// Handler serves metrics in the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

