package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagedseq_client_requests_total",
		Help: "Total upstream requests by outcome (status code, cache, network_error)",
	}, []string{"status"})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pagedseq_client_request_duration_seconds",
		Help:    "Upstream request duration in seconds, retries included",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
	})

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagedseq_client_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	retryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pagedseq_client_retry_backoff_seconds",
		Help:    "Backoff duration before retries by error class",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"error_class"})

	retryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagedseq_client_retry_exhausted_total",
		Help: "Total number of requests that failed after all retries by error class",
	}, []string{"error_class"})

	pagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagedseq_client_pages_fetched_total",
		Help: "Total number of upstream pages fetched by page walks",
	})
)
