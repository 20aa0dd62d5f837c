// Package metrics exposes the Prometheus collectors shared by the agent and
// cloud dispatcher binaries.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// TransportConnected reports whether the MQTT channel is currently connected.
	TransportConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fleetdiag_transport_connected",
			Help: "Whether the MQTT transport channel is currently connected (1) or not (0).",
		},
	)

	// CommandsTotal counts command executions by action kind and terminal status.
	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetdiag_commands_total",
			Help: "Total number of commands executed, by action kind and terminal status.",
		},
		[]string{"action", "status"},
	)

	// CommandLatencySeconds records end-to-end command handling latency.
	CommandLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fleetdiag_command_latency_seconds",
			Help:    "Latency from command receipt to response publish, in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action"},
	)

	// InferenceTierHits counts which inference tier resolved a natural-language command.
	InferenceTierHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetdiag_inference_tier_hits_total",
			Help: "Number of commands resolved by each inference tier.",
		},
		[]string{"tier"},
	)

	// ShellExecutionsTotal counts safe-shell invocations by outcome.
	ShellExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetdiag_shell_executions_total",
			Help: "Total number of shell executor invocations, by outcome.",
		},
		[]string{"outcome"},
	)

	// ShadowDeltasPublished counts shadow deltas published after a desired-state update.
	ShadowDeltasPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetdiag_shadow_deltas_published_total",
			Help: "Total number of shadow deltas published, by device.",
		},
		[]string{"device_id"},
	)

	// IsoTpReassemblyErrors counts failed ISO-TP multi-frame reassemblies.
	IsoTpReassemblyErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fleetdiag_isotp_reassembly_errors_total",
			Help: "Total number of ISO-TP multi-frame reassembly failures.",
		},
	)
)

// Registry is a dedicated Prometheus registry so callers aren't forced to
// share the global default registry (and so tests can construct a fresh one).
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		TransportConnected,
		CommandsTotal,
		CommandLatencySeconds,
		InferenceTierHits,
		ShellExecutionsTotal,
		ShadowDeltasPublished,
		IsoTpReassemblyErrors,
	)
}
