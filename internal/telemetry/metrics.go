package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "functionsagent"

// Metrics holds the agent's Prometheus collectors.
type Metrics struct {
	// ChainRuns counts executor runs by status
	ChainRuns *prometheus.CounterVec
	// LLMCalls counts chat model generations by status
	LLMCalls *prometheus.CounterVec
	// ToolCalls counts tool invocations by status
	ToolCalls *prometheus.CounterVec
	// AgentActions counts tool selections by the agent
	AgentActions *prometheus.CounterVec
	// InvocationDuration tracks how long node invocations take
	InvocationDuration *prometheus.HistogramVec
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ChainRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chain_runs_total",
				Help:      "Total number of agent executor runs",
			},
			[]string{"status"},
		),
		LLMCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "llm_calls_total",
				Help:      "Total number of chat model generations",
			},
			[]string{"status"},
		),
		ToolCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_calls_total",
				Help:      "Total number of tool invocations",
			},
			[]string{"status"},
		),
		AgentActions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "agent_actions_total",
				Help:      "Total number of tool selections made by the agent",
			},
			[]string{"tool"},
		),
		InvocationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "invocation_duration_seconds",
				Help:      "Node invocation duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"status"},
		),
	}
}

// ObserveInvocation records the duration of one node invocation.
func (m *Metrics) ObserveInvocation(status string, d time.Duration) {
	m.InvocationDuration.WithLabelValues(status).Observe(d.Seconds())
}
