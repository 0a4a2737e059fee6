// Package metrics exposes Prometheus instruments for model calls,
// generations and posts.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "xstudio"

var (
	// ModelCalls counts model requests by backend and outcome.
	ModelCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "model_calls_total",
		Help:      "Model completion requests by backend and outcome.",
	}, []string{"backend", "outcome"})

	// ModelLatency observes completion latency per backend.
	ModelLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "model_call_seconds",
		Help:      "Model completion latency.",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
	}, []string{"backend"})

	// Generations counts pipeline runs by result.
	Generations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "generations_total",
		Help:      "Suggestion generations by result.",
	}, []string{"result"})

	// Posts counts publish attempts by platform and outcome.
	Posts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "posts_total",
		Help:      "Publish attempts by platform and outcome.",
	}, []string{"platform", "outcome"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
