// Package metrics defines and registers all custom Prometheus metrics for the
// school management API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry through promauto
// when the package is first imported.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "school"

// ── Identity metrics ──────────────────────────────────────────────────────────

// IdentityResolutionsTotal counts initialize-user calls.
// Label:
//   - outcome: "resolved", "first_admin" or "error"
var IdentityResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "identity_resolutions_total",
		Help:      "Total number of identity resolutions, by outcome.",
	},
	[]string{"outcome"},
)

// BootstrapAttemptsTotal counts setup-first-admin calls.
// Label:
//   - result: "claimed", "not_eligible" or "error"
var BootstrapAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bootstrap_attempts_total",
		Help:      "Total number of first-admin setup attempts, by result.",
	},
	[]string{"result"},
)

// CapabilityDenialsTotal counts requests refused by a capability gate.
// Label:
//   - capability: "view", "manage", "export" or "delete"
var CapabilityDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "capability_denials_total",
		Help:      "Total number of requests denied for a missing capability.",
	},
	[]string{"capability"},
)

// PermissionFallbacksTotal counts permission lookups answered with the
// degraded view-only capability set.
var PermissionFallbacksTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "permission_fallbacks_total",
		Help:      "Total number of permission lookups that fell back to view-only.",
	},
)

// ── Webhook metrics ───────────────────────────────────────────────────────────

// WebhookDeliveriesTotal counts identity webhook deliveries at the edge.
// Label:
//   - result: "accepted", "invalid_signature" or "invalid_payload"
var WebhookDeliveriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_deliveries_total",
		Help:      "Total number of identity webhook deliveries, by result.",
	},
	[]string{"result"},
)

// EventsProcessedTotal counts lifecycle events that completed processing.
// Label:
//   - type: "user.created", "user.updated" or "user.deleted"
var EventsProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_processed_total",
		Help:      "Total number of identity lifecycle events successfully processed.",
	},
	[]string{"type"},
)

// EventsErrorsTotal counts lifecycle events that failed processing.
// Label:
//   - reason: "invalid_event", "storage" or "process_failed"
var EventsErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_errors_total",
		Help:      "Total number of identity lifecycle events that failed processing.",
	},
	[]string{"reason"},
)

// EventsDedupTotal counts deduplication decisions.
// Label:
//   - result: "hit" (duplicate, skipped) or "miss" (new delivery, processed)
var EventsDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dedup_total",
		Help:      "Total number of deduplication checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// EventsQueueDepth tracks the current number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var EventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// EventProcessingDuration measures how long a single event takes to process end-to-end.
// Label:
//   - type: the event type, or "error" on failure
var EventProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "event_processing_duration_seconds",
		Help:      "Duration of event processing from dequeue to audit.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"type"},
)

// ── School metrics ────────────────────────────────────────────────────────────

// SchoolWritesTotal counts successful writes to school records.
// Labels:
//   - entity: "institution", "course", "student", "subject" or "grade"
//   - op: "create", "update" or "delete"
var SchoolWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "school_writes_total",
		Help:      "Total number of school record writes, by entity and operation.",
	},
	[]string{"entity", "op"},
)
