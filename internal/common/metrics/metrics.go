package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "botaniq_requests_total",
			Help: "Total number of HTTP requests handled per service",
		},
		[]string{"service", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "botaniq_request_duration_seconds",
			Help: "Duration of request processing in seconds",
		},
		[]string{"service"},
	)

	FulfillmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "botaniq_fulfillments_total",
			Help: "Webhook fulfillments rendered, by intent and outcome",
		},
		[]string{"intent", "outcome"},
	)

	FactStoreLoadErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "botaniq_fact_store_load_errors_total",
			Help: "Plant data load failures by error code",
		},
		[]string{"code"},
	)

	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "botaniq_upstream_requests_total",
			Help: "Calls to third-party APIs by upstream and result",
		},
		[]string{"upstream", "result"},
	)
)
