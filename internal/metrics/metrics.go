// Package metrics defines and registers the custom Prometheus collectors of
// the blog API. It is the single source of truth for metric names, labels,
// and help strings.
//
// HTTP request metrics come from the echoprometheus middleware; the
// collectors here cover what happens behind the handlers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "blog"

// ── Read side ─────────────────────────────────────────────────────────────────

// FanoutDuration measures a concurrent group of store reads from launch to join.
// Label:
//   - operation: e.g. "list_posts", "search_posts", "stats"
var FanoutDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fanout_duration_seconds",
		Help:      "Duration of concurrent store read groups, from launch to join.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// PostViewsTotal counts view-counter increments.
// Label:
//   - lookup: "id" or "slug"
var PostViewsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "post_views_total",
		Help:      "Total number of post view-counter increments, by lookup kind.",
	},
	[]string{"lookup"},
)

// CacheLookupsTotal counts snapshot cache lookups.
// Labels:
//   - key: cache key (e.g. "stats:snapshot")
//   - result: "hit", "miss" or "error"
var CacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Total number of snapshot cache lookups, by key and result.",
	},
	[]string{"key", "result"},
)

// CacheRefreshTotal counts scheduled cache refresh runs.
// Label:
//   - result: "ok" or "error"
var CacheRefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_refresh_total",
		Help:      "Total number of scheduled aggregate cache refreshes.",
	},
	[]string{"result"},
)

// ── Write side ────────────────────────────────────────────────────────────────

// WritesTotal counts successful write operations.
// Labels:
//   - entity: "user" or "post"
//   - op: "create", "update" or "delete"
var WritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "writes_total",
		Help:      "Total number of successful write operations, by entity and operation.",
	},
	[]string{"entity", "op"},
)
