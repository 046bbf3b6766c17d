// Package metrics exposes the Prometheus registry shared by all pagedseq
// packages. Metrics are declared with promauto next to the code that updates
// them (client, cache, jsonbridge, sqlsource); this package documents them
// and serves them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry is the registerer promauto uses in every package.
	Registry = prometheus.DefaultRegisterer

	// Gatherer collects everything registered on Registry.
	Gatherer = prometheus.DefaultGatherer
)

// Handler serves the metrics in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metric catalogue
//
// JSON bridge (pkg/jsonbridge):
//   - pagedseq_jsonbridge_documents_total{mode} (Counter): parsed documents by shape
//   - pagedseq_jsonbridge_malformed_documents_total (Counter): bodies that were not valid JSON
//   - pagedseq_jsonbridge_items_decoded_total (Counter)
//   - pagedseq_jsonbridge_items_skipped_total{reason} (Counter): null or undecodable items
//   - pagedseq_jsonbridge_items_encoded_total (Counter)
//   - pagedseq_jsonbridge_encode_duration_seconds (Histogram): time to stream one envelope
//
// Upstream client (pkg/client):
//   - pagedseq_client_requests_total{status} (Counter): by status code, "cache" or "network_error"
//   - pagedseq_client_request_duration_seconds (Histogram): retries included
//   - pagedseq_client_retries_total{error_class} (Counter)
//   - pagedseq_client_retry_backoff_seconds{error_class} (Histogram)
//   - pagedseq_client_retry_exhausted_total{error_class} (Counter)
//   - pagedseq_client_pages_fetched_total (Counter)
//
// Response cache (pkg/cache):
//   - pagedseq_cache_hits_total (Counter)
//   - pagedseq_cache_misses_total (Counter)
//   - pagedseq_cache_entry_size_bytes (Histogram)
//   - pagedseq_cache_conditional_requests_total (Counter)
//   - pagedseq_cache_not_modified_total (Counter)
//   - pagedseq_cache_errors_total{operation} (Counter)
//
// SQL source (pkg/sqlsource):
//   - pagedseq_sqlsource_queries_total{kind} (Counter): "count" or "page"
//   - pagedseq_sqlsource_query_duration_seconds{kind} (Histogram)
//   - pagedseq_sqlsource_rows_total (Counter)
//
// Example queries:
//
//	# Cache hit rate
//	sum(rate(pagedseq_cache_hits_total[5m])) /
//	(sum(rate(pagedseq_cache_hits_total[5m])) + sum(rate(pagedseq_cache_misses_total[5m])))
//
//	# Share of skipped JSON items
//	sum(rate(pagedseq_jsonbridge_items_skipped_total[5m])) /
//	sum(rate(pagedseq_jsonbridge_items_decoded_total[5m]))
//
//	# P95 upstream latency
//	histogram_quantile(0.95, rate(pagedseq_client_request_duration_seconds_bucket[5m]))
