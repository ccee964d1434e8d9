// Package telemetry holds the Prometheus metrics and OpenTelemetry tracing
// setup shared by the HTTP server and the chat pipeline.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "portfolio"

var (
	// ChatRequests counts chat requests by outcome (ok, config_error,
	// retrieval_error, generation_error, unexpected_error, rate_limited).
	ChatRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chat_requests_total",
		Help:      "Chat requests by outcome.",
	}, []string{"outcome"})

	// ContactRequests counts contact form submissions by outcome.
	ContactRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contact_requests_total",
		Help:      "Contact form submissions by outcome.",
	}, []string{"outcome"})

	// StageDuration records how long each chat stage (embed, retrieve,
	// generate) spent waiting on its provider.
	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "chat_stage_duration_seconds",
		Help:      "Provider latency per chat stage.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"stage"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
