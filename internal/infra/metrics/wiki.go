package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(wikiRequestsTotal, wikiRequestLatencyMs)
}

var (
	wikiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wiki_requests_total",
			Help: "Upstream encyclopedia calls by operation and result (ok or failure reason).",
		},
		[]string{"op", "result"},
	)

	wikiRequestLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wiki_request_latency_ms",
			Help:    "Upstream encyclopedia call latency in milliseconds.",
			Buckets: []float64{25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 8000},
		},
		[]string{"op"},
	)
)

// ObserveWikiRequest records one upstream call. result is "ok" or a failure reason.
func ObserveWikiRequest(op, result string, elapsed time.Duration) {
	wikiRequestsTotal.WithLabelValues(norm(op), norm(result)).Inc()
	wikiRequestLatencyMs.WithLabelValues(norm(op)).Observe(float64(elapsed.Milliseconds()))
}
