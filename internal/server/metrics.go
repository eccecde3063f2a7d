package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kviit_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kviit_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	parseRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kviit_parse_requests_total",
			Help: "Total number of receipt parse requests",
		},
		[]string{"source", "status"}, // source: image, markup
	)

	parseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kviit_parse_duration_seconds",
			Help:    "Receipt parse duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 25},
		},
		[]string{"source"},
	)

	itemsPerReceipt = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kviit_items_per_receipt",
			Help:    "Number of line items reconstructed per receipt",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
		[]string{"source"},
	)
)
