package jsonbridge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	documentsParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagedseq_jsonbridge_documents_total",
			Help: "Documents parsed by detected shape",
		},
		[]string{"mode"},
	)

	malformedDocuments = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pagedseq_jsonbridge_malformed_documents_total",
			Help: "Documents rejected as malformed JSON",
		},
	)

	itemsDecoded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pagedseq_jsonbridge_items_decoded_total",
			Help: "Items decoded from documents",
		},
	)

	itemsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagedseq_jsonbridge_items_skipped_total",
			Help: "Items skipped while reading, by reason (null, decode)",
		},
		[]string{"reason"},
	)

	itemsEncoded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pagedseq_jsonbridge_items_encoded_total",
			Help: "Items written by the producer",
		},
	)

	encodeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pagedseq_jsonbridge_encode_duration_seconds",
			Help:    "Time to stream one envelope",
			Buckets: prometheus.DefBuckets,
		},
	)
)
