// Package metrics defines the custom Prometheus metrics of the dashboard.
// All metrics register with the default registry through promauto, which
// /metrics serves next to the echoprometheus HTTP metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ppfadmin"

// ── Backend gateway ──────────────────────────────────────────────────────────

// GatewayRequestsTotal counts backend calls.
// Labels:
//   - resource: "clients", "roles", "users" or "auth"
//   - op: "list", "get", "create", "update", "delete", "login", "register"
//   - outcome: "ok" or "error"
var GatewayRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_requests_total",
		Help:      "Total number of PPF API calls, by resource, operation and outcome.",
	},
	[]string{"resource", "op", "outcome"},
)

var GatewayRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "gateway_request_duration_seconds",
		Help:      "Latency of PPF API calls.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"resource", "op"},
)

// PageCacheTotal counts list page cache lookups.
// Label result: "hit" or "miss".
var PageCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "page_cache_total",
		Help:      "List page cache lookups, by resource and result.",
	},
	[]string{"resource", "result"},
)

// ── Access ───────────────────────────────────────────────────────────────────

// GuardDecisionsTotal counts route guard outcomes.
// Label decision: "allow", "login" or "unauthorized".
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Route guard decisions, by screen and decision.",
	},
	[]string{"screen", "decision"},
)

// LoginAttemptsTotal counts login attempts. Label result: "success", "failure", "throttled".
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Login attempts, by result.",
	},
	[]string{"result"},
)

// ── Records ──────────────────────────────────────────────────────────────────

// RecordOperationsTotal counts screen operations that reached the controller.
// Labels:
//   - resource: screen name
//   - op: "create", "update", "delete", "view", "search", "export"
//   - outcome: "ok", "rejected" (validation or business rule) or "error"
var RecordOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "record_operations_total",
		Help:      "Record operations issued from the management screens.",
	},
	[]string{"resource", "op", "outcome"},
)

// ── Audit ────────────────────────────────────────────────────────────────────

var AuditWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_writes_total",
		Help:      "Audit entries written, by sink and outcome.",
	},
	[]string{"sink", "outcome"},
)

var AuditDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_dropped_total",
		Help:      "Audit entries dropped because the dispatcher queue was full.",
	},
)

// Gateway feeds gateway observations into the metrics above.
type Gateway struct{}

func (Gateway) ObserveRequest(resource, op string, ok bool, elapsed time.Duration) {
	GatewayRequestsTotal.WithLabelValues(resource, op, outcome(ok)).Inc()
	GatewayRequestDuration.WithLabelValues(resource, op).Observe(elapsed.Seconds())
}

func (Gateway) ObserveCache(resource string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	PageCacheTotal.WithLabelValues(resource, result).Inc()
}

// Audit feeds dispatcher observations into the metrics above.
type Audit struct{}

func (Audit) ObserveAuditWrite(sink string, ok bool) {
	AuditWritesTotal.WithLabelValues(sink, outcome(ok)).Inc()
}

func (Audit) ObserveAuditDropped() {
	AuditDroppedTotal.Inc()
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

