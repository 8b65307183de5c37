package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ⭐ SSOT: Prometheus 메트릭은 여기서만 등록
var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rebalancer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rebalancer_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Exchange rate metrics
	FXRateFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rebalancer_fx_rate_fetch_total",
			Help: "Exchange rate resolutions by source (api, cache, fallback)",
		},
		[]string{"source"},
	)

	FXFallbackTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rebalancer_fx_fallback_total",
			Help: "Number of times the fallback USD/KRW rate was used",
		},
	)

	FXCurrentRate = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rebalancer_fx_usd_krw_rate",
			Help: "Most recently resolved USD/KRW rate",
		},
	)

	// Quote lookup metrics
	QuoteLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rebalancer_quote_lookups_total",
			Help: "Symbol lookups by market and result (live, cache, fallback, not_found, invalid)",
		},
		[]string{"market", "result"},
	)

	// Engine metrics
	RebalanceAnalysesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rebalancer_analyses_total",
			Help: "Number of rebalance analyses computed",
		},
	)

	// Scheduler metrics
	SchedulerJobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rebalancer_scheduler_job_runs_total",
			Help: "Scheduler job runs by job and status",
		},
		[]string{"job", "status"},
	)
)

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordFXRate records how an exchange rate was resolved
func RecordFXRate(source string, rate float64) {
	FXRateFetchTotal.WithLabelValues(source).Inc()
	FXCurrentRate.Set(rate)
	if source == "fallback" {
		FXFallbackTotal.Inc()
	}
}

// RecordQuoteLookup records a symbol lookup outcome
func RecordQuoteLookup(market, result string) {
	QuoteLookupsTotal.WithLabelValues(market, result).Inc()
}

// RecordJobRun records a scheduler job execution
func RecordJobRun(job string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	SchedulerJobRunsTotal.WithLabelValues(job, status).Inc()
}
