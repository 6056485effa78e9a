// Package metrics defines and registers all custom Prometheus metrics for
// the SquidPro auth system. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics register with the default Prometheus registry via promauto at
// package load; the /metrics endpoint is mounted by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "squidpro"

// RegistrationsTotal counts account creations.
// Labels:
//   - path: "unified", "supplier_legacy", or "reviewer_legacy"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of accounts created, by registration path.",
	},
	[]string{"path"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// SessionsRevokedTotal counts explicit session revocations (logout and
// logout-all). TTL expiry is not counted here.
var SessionsRevokedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_revoked_total",
		Help:      "Total number of sessions revoked by explicit logout.",
	},
)

// AuthFailuresTotal counts rejected credentials at the middleware boundary.
// Label:
//   - kind: "session" or "api_key"
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of requests rejected for bad credentials, by credential kind.",
	},
	[]string{"kind"},
)

// LedgerDegradedTotal counts role resolutions that fell back to a default
// payload because a ledger was unreachable.
// Label:
//   - ledger: "supplier" or "reviewer"
var LedgerDegradedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_degraded_total",
		Help:      "Total number of role resolutions degraded by an unreachable ledger.",
	},
	[]string{"ledger"},
)
