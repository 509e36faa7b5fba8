// Package metrics defines and registers all custom Prometheus metrics for the
// identity core. It is the single source of truth for metric names, labels,
// and help strings.
//
// Collectors are registered with the default Prometheus registry on package
// initialisation via promauto; HTTP request metrics come from echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "identity"

// ResultSuccess is the result label value shared by the counters below.
const ResultSuccess = "success"

// ── Credential metrics ───────────────────────────────────────────────────────

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "success", "duplicate", "malformed" or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of identity registration attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts sign-in attempts.
// Label:
//   - result: "success", "invalid_credentials", "throttled", "malformed" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of sign-in attempts, by result.",
	},
	[]string{"result"},
)

// PasswordHashDuration measures the cost of producing a single password hash.
var PasswordHashDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_hash_duration_seconds",
		Help:      "Duration of bcrypt hash generation.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
	},
)

// ── Request gate metrics ─────────────────────────────────────────────────────

// TokenVerificationsTotal counts bearer token checks in the request authenticator.
// Label:
//   - result: "success", "missing", "expired", "invalid_signature" or "malformed"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of bearer token verifications, by result.",
	},
	[]string{"result"},
)

// AuthorizationDecisionsTotal counts role authorizer outcomes.
// Label:
//   - result: "allowed" or "forbidden"
var AuthorizationDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_decisions_total",
		Help:      "Total number of role authorization decisions, by result.",
	},
	[]string{"result"},
)

// ── Audit metrics ────────────────────────────────────────────────────────────

// AuditEventsDroppedTotal counts audit events discarded because a worker queue was full.
var AuditEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of auth audit events dropped due to a full queue.",
	},
)

// AuditQueueDepth tracks the number of events waiting in each audit worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each worker channel.",
	},
	[]string{"worker_id"},
)
