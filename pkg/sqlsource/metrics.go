package sqlsource

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagedseq_sqlsource_queries_total",
		Help: "Total SQLite statements executed by kind (count, page)",
	}, []string{"kind"})

	queryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pagedseq_sqlsource_query_duration_seconds",
		Help:    "SQLite statement duration by kind",
		Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
	}, []string{"kind"})

	rowsRead = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagedseq_sqlsource_rows_total",
		Help: "Total rows read into sequences",
	})
)
