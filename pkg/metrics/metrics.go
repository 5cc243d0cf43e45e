package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saaskit_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// InvitationTransitions counts invitation lifecycle transitions
	// (created|accepted|rejected|cancelled|expired).
	InvitationTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saaskit_invitation_transitions_total",
			Help: "Total number of invitation lifecycle transitions",
		},
		[]string{"transition"},
	)

	// MemberRemovals counts membership removals by outcome (removed|blocked_last_owner).
	MemberRemovals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saaskit_member_removals_total",
			Help: "Total number of member removal attempts",
		},
		[]string{"outcome"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "saaskit_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
