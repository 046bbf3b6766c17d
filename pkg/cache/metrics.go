package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts fresh entries served from Redis.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagedseq_cache_hits_total",
		Help: "Total number of response cache hits",
	})

	// CacheMisses counts lookups that found no fresh entry.
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagedseq_cache_misses_total",
		Help: "Total number of response cache misses",
	})

	// EntrySize observes the encoded size of stored entries.
	EntrySize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pagedseq_cache_entry_size_bytes",
		Help:    "Encoded size of stored cache entries",
		Buckets: prometheus.ExponentialBuckets(256, 4, 8),
	})

	// ConditionalRequests counts revalidation requests sent upstream.
	ConditionalRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagedseq_cache_conditional_requests_total",
		Help: "Total number of conditional requests sent upstream",
	})

	// NotModified counts 304 responses answered from the cache.
	NotModified = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagedseq_cache_not_modified_total",
		Help: "Total number of 304 Not Modified responses served from cache",
	})

	// CacheErrors counts Redis failures by operation.
	CacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagedseq_cache_errors_total",
		Help: "Total number of cache operation errors",
	}, []string{"operation"}) // "get", "set", "delete"
)
