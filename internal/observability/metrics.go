package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	feedLoadDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "peerform",
		Subsystem: "feed",
		Name:      "load_duration_seconds",
		Help:      "Latency of feed loads by result.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind", "result"})
	feedCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "peerform",
		Subsystem: "feed",
		Name:      "cache_lookups_total",
		Help:      "Feed result cache lookups by outcome.",
	}, []string{"outcome"})
	enrichmentFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "peerform",
		Subsystem: "feed",
		Name:      "enrichment_failures_total",
		Help:      "Per-post enrichment calls that fell back to a default value.",
	}, []string{"field"})
	statsFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "peerform",
		Subsystem: "leaderboard",
		Name:      "stats_failures_total",
		Help:      "Candidates dropped from a ranking because their stats could not be fetched.",
	})
	toggles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "peerform",
		Subsystem: "engagement",
		Name:      "toggles_total",
		Help:      "Like and follow toggles by kind and outcome.",
	}, []string{"kind", "outcome"})
	eventsHandled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "peerform",
		Subsystem: "worker",
		Name:      "events_handled_total",
		Help:      "Engagement stream events processed by type and result.",
	}, []string{"type", "result"})
)

func init() {
	prometheus.MustRegister(feedLoadDuration, feedCacheLookups, enrichmentFailures, statsFailures, toggles, eventsHandled)
}

// ObserveFeedLoad records one feed load.
func ObserveFeedLoad(kind, result string, started time.Time) {
	feedLoadDuration.WithLabelValues(kind, result).Observe(time.Since(started).Seconds())
}

// RecordCacheLookup counts a cache hit, miss or error.
func RecordCacheLookup(outcome string) {
	feedCacheLookups.WithLabelValues(outcome).Inc()
}

// RecordEnrichmentFailure counts a degraded feed field.
func RecordEnrichmentFailure(field string) {
	enrichmentFailures.WithLabelValues(field).Inc()
}

func RecordStatsFailure() {
	statsFailures.Inc()
}

func RecordToggle(kind, outcome string) {
	toggles.WithLabelValues(kind, outcome).Inc()
}

func RecordEventHandled(eventType string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	eventsHandled.WithLabelValues(eventType, result).Inc()
}
