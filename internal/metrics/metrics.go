// Package metrics provides Prometheus metrics for the news trust services.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SearchesTotal counts similar-news searches by outcome ("ok" or an error kind).
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newstrust",
			Name:      "searches_total",
			Help:      "Total number of similar-news searches",
		},
		[]string{"outcome"},
	)

	// UpstreamDuration measures news API round trips.
	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "newstrust",
			Name:      "newsapi_request_duration_seconds",
			Help:      "Duration of news API requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	// ArticlesReturned observes how many articles survive filtering per search.
	ArticlesReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "newstrust",
			Name:      "articles_returned",
			Help:      "Distribution of articles returned per search",
			Buckets:   []float64{0, 1, 2, 3, 4, 5},
		},
	)

	// TrustLookupsTotal counts trust lookups by the source that answered.
	TrustLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newstrust",
			Name:      "trust_lookups_total",
			Help:      "Total number of domain trust lookups",
		},
		[]string{"source"},
	)

	// ReputationUpdatesTotal counts reputation updates consumed by the worker.
	ReputationUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newstrust",
			Name:      "reputation_updates_total",
			Help:      "Total number of reputation updates processed",
		},
		[]string{"result"},
	)
)

// RecordSearch records a finished search.
func RecordSearch(outcome string) {
	SearchesTotal.WithLabelValues(outcome).Inc()
}

// RecordUpstream records a news API call.
func RecordUpstream(outcome string, elapsed time.Duration) {
	UpstreamDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// RecordArticles records the article count of a successful search.
func RecordArticles(n int) {
	ArticlesReturned.Observe(float64(n))
}

// RecordTrustLookup records which provider answered a lookup.
func RecordTrustLookup(source string) {
	TrustLookupsTotal.WithLabelValues(source).Inc()
}

// RecordReputationUpdate records the fate of one reputation message.
func RecordReputationUpdate(result string) {
	ReputationUpdatesTotal.WithLabelValues(result).Inc()
}
