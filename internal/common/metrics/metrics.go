// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for GatewayRequests.
const (
	OutcomeOK               = "ok"
	OutcomeInvalidInput     = "invalid_input"
	OutcomeMissingQueryText = "missing_query_text"
	OutcomeGenerationFailed = "generation_failed"
)

var (
	GatewayRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_gateway_requests_total",
			Help: "Total number of query requests by entry surface and outcome",
		},
		[]string{"surface", "outcome"},
	)

	GatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "query_gateway_request_duration_seconds",
			Help:    "Duration of query handling in seconds, including the generation call",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"surface"},
	)

	GatewayRequestsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "query_gateway_requests_active",
			Help: "Number of query requests currently being handled",
		},
		[]string{"surface"},
	)
)
