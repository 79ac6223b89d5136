package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus metrics for monitoring engine health and performance
var (
	PingsReceivedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracking_pings_received_total",
			Help: "Total number of location pings received",
		},
	)

	PingsRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracking_pings_rejected_total",
			Help: "Total number of location pings rejected by validation",
		},
	)

	StatusTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracking_status_transitions_total",
			Help: "Total number of accepted status transitions",
		},
		[]string{"to_status"},
	)

	IllegalTransitionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracking_illegal_transitions_total",
			Help: "Total number of rejected status transitions",
		},
	)

	FanoutPublishedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracking_fanout_published_total",
			Help: "Total number of events delivered to subscriber queues",
		},
	)

	FanoutDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracking_fanout_dropped_total",
			Help: "Total number of events dropped from full subscriber queues",
		},
	)

	RouteProviderCallsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracking_route_provider_calls_total",
			Help: "Total number of external routing provider calls",
		},
	)

	RouteProviderFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracking_route_provider_failures_total",
			Help: "Total number of failed routing provider calls",
		},
	)

	RouteProviderDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tracking_route_provider_duration_seconds",
			Help:    "Duration of routing provider calls",
			Buckets: prometheus.DefBuckets,
		},
	)

	FeeFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracking_fee_fallbacks_total",
			Help: "Total number of fee resolutions served by the fixed fallback (zero active zones)",
		},
	)
)

// Register registers all Prometheus metrics
func Register() {
	prometheus.MustRegister(
		PingsReceivedTotal,
		PingsRejectedTotal,
		StatusTransitionsTotal,
		IllegalTransitionsTotal,
		FanoutPublishedTotal,
		FanoutDroppedTotal,
		RouteProviderCallsTotal,
		RouteProviderFailuresTotal,
		RouteProviderDuration,
		FeeFallbacksTotal,
	)
}
