// Package metrics records per-run counters for agent invocations, tool calls
// and extraction fallbacks.
//
// A run owns its own registry; nothing is registered globally. The registry
// can be dumped in the text exposition format for a node_exporter textfile
// collector once the batch job finishes.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Recorder struct {
	registry *prometheus.Registry

	invocations        *prometheus.CounterVec
	invocationDuration *prometheus.HistogramVec
	fallbacks          *prometheus.CounterVec
	toolCalls          *prometheus.CounterVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "specwright_agent_invocations_total",
				Help: "Agent invocations by agent and status",
			},
			[]string{"agent", "status"},
		),
		invocationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "specwright_agent_invocation_duration_seconds",
				Help:    "Duration of agent invocations in seconds",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
			},
			[]string{"agent"},
		),
		fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "specwright_extraction_fallbacks_total",
				Help: "Artifacts that fell back to their default because extraction failed",
			},
			[]string{"artifact"},
		),
		toolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "specwright_tool_calls_total",
				Help: "Tool calls made by agents by tool and status",
			},
			[]string{"tool", "status"},
		),
	}

	r.registry.MustRegister(r.invocations, r.invocationDuration, r.fallbacks, r.toolCalls)
	return r
}

// RecordInvocation counts one agent invocation.
func (r *Recorder) RecordInvocation(agent string, err error, duration time.Duration) {
	if r == nil {
		return
	}
	r.invocations.WithLabelValues(agent, status(err)).Inc()
	r.invocationDuration.WithLabelValues(agent).Observe(duration.Seconds())
}

func (r *Recorder) RecordFallback(artifact string) {
	if r == nil {
		return
	}
	r.fallbacks.WithLabelValues(artifact).Inc()
}

func (r *Recorder) RecordToolCall(tool string, ok bool) {
	if r == nil {
		return
	}
	s := "success"
	if !ok {
		s = "error"
	}
	r.toolCalls.WithLabelValues(tool, s).Inc()
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteFile writes all metrics to path in the text exposition format.
func (r *Recorder) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics file: %w", err)
	}
	return nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
