// Package metrics exposes Prometheus counters for the session bootstrap flow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GateTransitions counts identity dialog open/close requests by requested state.
	GateTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kairn",
		Subsystem: "gate",
		Name:      "requests_total",
		Help:      "Identity dialog visibility requests, by requested state.",
	}, []string{"requested"})

	// DefaultCommits counts how often the fallback identity was committed.
	DefaultCommits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "kairn",
		Subsystem: "gate",
		Name:      "default_commits_total",
		Help:      "Fallback identities committed because the dialog was toggled without a name.",
	})

	// IdentityWrites counts committed name changes, including resets.
	IdentityWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kairn",
		Subsystem: "identity",
		Name:      "writes_total",
		Help:      "Identity state changes, by kind.",
	}, []string{"kind"})

	// PersistFailures counts identity writes that could not be persisted.
	PersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "kairn",
		Subsystem: "identity",
		Name:      "persist_failures_total",
		Help:      "Identity state writes dropped by the persister.",
	})

	// Mounts counts chat root mounts.
	Mounts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "kairn",
		Subsystem: "chat",
		Name:      "mounts_total",
		Help:      "Chat surfaces mounted with a fresh session id.",
	})
)

// RequestedLabel formats a gate request for the GateTransitions label.
func RequestedLabel(open bool) string {
	if open {
		return "open"
	}
	return "close"
}
