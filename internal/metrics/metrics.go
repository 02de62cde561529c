// Package metrics holds the prometheus collectors of the pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cryptoflow"

var (
	fetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_total",
		Help:      "Live feed fetches by source and result.",
	}, []string{"source", "result"})

	cacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_total",
		Help:      "Cache lookups by source and result (hit, miss, stale, empty).",
	}, []string{"source", "result"})

	postsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "posts_total",
		Help:      "Social posts by result (posted, skipped, failed).",
	}, []string{"result"})

	aggregateArticles = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "aggregate_articles",
		Help:      "Articles returned by the last aggregation.",
	})
)

func Fetch(source string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}

	fetchTotal.WithLabelValues(source, result).Inc()
}

func Cache(source, result string) {
	cacheTotal.WithLabelValues(source, result).Inc()
}

func Post(result string) {
	postsTotal.WithLabelValues(result).Inc()
}

func Aggregated(n int) {
	aggregateArticles.Set(float64(n))
}
