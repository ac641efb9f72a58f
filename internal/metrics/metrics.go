package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	LedgerPostingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_postings_total",
			Help: "Total number of customer ledger postings by type and outcome",
		},
		[]string{"type", "status"},
	)

	FxRateFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fx_rate_fetches_total",
			Help: "Exchange rate fetch attempts by source and outcome",
		},
		[]string{"source", "status"},
	)

	CreditLimitWarningsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "credit_limit_warnings_total",
			Help: "Number of sales that exceeded a customer credit limit",
		},
	)
)
