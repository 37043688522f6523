package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SufficiencyChecks counts gas sufficiency evaluations by outcome (ok, insufficient, fail_open, cached).
	SufficiencyChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gas_checker_sufficiency_checks_total",
			Help: "Gas sufficiency evaluations by outcome.",
		},
		[]string{"outcome"},
	)

	// InsufficientChains counts chains flagged as lacking gas.
	InsufficientChains = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gas_checker_insufficient_chains_total",
			Help: "Chains flagged as having insufficient gas balance.",
		},
		[]string{"chain_id"},
	)

	// BalanceFetchDuration observes per-chain balance fetch latency.
	BalanceFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gas_checker_balance_fetch_duration_seconds",
			Help:    "Latency of per-chain balance fetches.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"chain_id", "status"},
	)

	// RefuelDecisions counts refuel recommendations by decision.
	RefuelDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gas_checker_refuel_decisions_total",
			Help: "Refuel recommendations by decision.",
		},
		[]string{"enabled"},
	)

	// RecommendationRequests counts gas recommendation API calls by status.
	RecommendationRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gas_checker_recommendation_requests_total",
			Help: "Gas recommendation API requests by status.",
		},
		[]string{"status"},
	)

	// HTTPRequestDuration observes REST API latency.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gas_checker_http_request_duration_seconds",
			Help:    "REST API request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	registerOnce sync.Once
)

// MustRegisterMetrics registers all collectors with the default registry. Safe to call more than once.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			SufficiencyChecks,
			InsufficientChains,
			BalanceFetchDuration,
			RefuelDecisions,
			RecommendationRequests,
			HTTPRequestDuration,
		)
	})
}
