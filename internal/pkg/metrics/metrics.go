// Package metrics defines and registers the custom Prometheus metrics of the
// cats API. It is the single source of truth for metric names, labels and
// help strings.
//
// All metrics are registered with the default registry at package init via
// promauto, so importing the package is enough.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cats"

// ── Authorization ─────────────────────────────────────────────────────────────

// AuthzDecisionsTotal counts guard decisions.
// Labels:
//   - action: the guarded action (e.g. "cat:modify-own")
//   - result: "allow", "not_authenticated", "not_owner", "not_admin" or "deny"
var AuthzDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_decisions_total",
		Help:      "Total number of authorization decisions, by action and result.",
	},
	[]string{"action", "result"},
)

// RateLimitedTotal counts requests rejected by the GraphQL rate limiter.
var RateLimitedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by the rate limiter.",
	},
)

// ── Resources ─────────────────────────────────────────────────────────────────

// CatsCreatedTotal counts newly created cats.
// Label:
//   - surface: "rest" or "graphql"
var CatsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "created_total",
		Help:      "Total number of cats created, by API surface.",
	},
	[]string{"surface"},
)

// UsersRegisteredTotal counts successful registrations.
var UsersRegisteredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Total number of registered users.",
	},
)

// ── Photos ────────────────────────────────────────────────────────────────────

// GeotagResultsTotal counts geotag extractions.
// Label:
//   - result: "extracted" or "fallback"
var GeotagResultsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "geotag_results_total",
		Help:      "Total number of geotag extractions, by result.",
	},
	[]string{"result"},
)

// ThumbnailsTotal counts thumbnail jobs.
// Label:
//   - result: "ok", "error" or "dropped"
var ThumbnailsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "thumbnails_total",
		Help:      "Total number of thumbnail jobs, by result.",
	},
	[]string{"result"},
)

// ThumbnailQueueDepth tracks pending jobs per worker channel.
// Label:
//   - worker_id: numeric worker index
var ThumbnailQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "thumbnail_queue_depth",
		Help:      "Current number of thumbnail jobs pending in each worker channel.",
	},
	[]string{"worker_id"},
)

// ThumbnailDuration measures how long a single thumbnail takes to render and store.
var ThumbnailDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "thumbnail_duration_seconds",
		Help:      "Duration of thumbnail generation from dequeue to storage.",
		Buckets:   prometheus.DefBuckets,
	},
)
