// Package metrics declares the Prometheus collectors for the recommendation pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecommendationsTotal counts served recommendation sets.
	// Labels:
	//   - tier: extraction tier that produced the set (json, embedded, lines, default, none)
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_total",
			Help: "Total number of recommendation sets served, by extraction tier",
		},
		[]string{"tier"},
	)

	// LLMRequestsTotal counts completion calls.
	// Labels:
	//   - outcome: success, timeout, status, malformed_envelope, transport, unavailable
	LLMRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_requests_total",
			Help: "Total number of LLM completion requests, by outcome",
		},
		[]string{"outcome"},
	)

	// LLMRequestDuration measures completion latency, including failed calls.
	LLMRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "Duration of LLM completion requests in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 90},
		},
	)

	// RateLimitedTotal counts requests rejected by the recommendation rate limiter.
	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_rate_limited_total",
			Help: "Total number of recommendation requests rejected by the rate limiter",
		},
	)

	// ConversationSessionsTotal counts conversation flows by event.
	// Labels:
	//   - flow: recommend, quiz
	//   - event: started, completed, cancelled
	ConversationSessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversation_sessions_total",
			Help: "Total number of conversation flow events",
		},
		[]string{"flow", "event"},
	)
)
