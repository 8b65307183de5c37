package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wonny/etf-rebalancer/internal/api/handlers"
	"github.com/wonny/etf-rebalancer/pkg/logger"
	"github.com/wonny/etf-rebalancer/pkg/metrics"
)

const serviceName = "etf-rebalancer-api"

// Handlers bundles every endpoint group the router mounts
type Handlers struct {
	Stock        *handlers.StockHandler
	ExchangeRate *handlers.ExchangeRateHandler
	Rebalance    *handlers.RebalanceHandler
	Portfolio    *handlers.PortfolioHandler
}

// RouterOptions controls the ambient parts of the router
type RouterOptions struct {
	CORSOrigins    []string
	MetricsEnabled bool
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, opts RouterOptions, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	if opts.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()

	// Market data
	api.HandleFunc("/stock/{symbol}", h.Stock.GetStock).Methods("GET")
	api.HandleFunc("/exchange-rate", h.ExchangeRate.GetRate).Methods("GET")

	// Ad-hoc analysis
	api.HandleFunc("/rebalance", h.Rebalance.Analyze).Methods("POST")

	// Portfolios
	api.HandleFunc("/portfolios", h.Portfolio.Create).Methods("POST")
	api.HandleFunc("/portfolios", h.Portfolio.List).Methods("GET")
	api.HandleFunc("/portfolios/{id}", h.Portfolio.Get).Methods("GET")
	api.HandleFunc("/portfolios/{id}", h.Portfolio.Update).Methods("PUT")
	api.HandleFunc("/portfolios/{id}", h.Portfolio.Delete).Methods("DELETE")
	api.HandleFunc("/portfolios/{id}/rebalance", h.Portfolio.Rebalance).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))
	if opts.MetricsEnabled {
		r.Use(metricsMiddleware)
	}

	// CORS는 라우트 매칭 전에 처리해야 preflight(OPTIONS)가 405로 떨어지지 않음
	return cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})(r)
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": serviceName,
	})
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			// Call next handler
			next.ServeHTTP(rec, r)

			// Log request
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// metricsMiddleware records request count and latency per route template
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		// path 대신 템플릿을 라벨로 사용 (카디널리티 제한)
		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		metrics.RecordHTTPRequest(r.Method, route, rec.status, time.Since(start))
	})
}
