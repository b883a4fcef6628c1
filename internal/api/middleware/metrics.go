// metrics.go — Prometheus HTTP метрики Production Plan UI.
// Регистрирует метрики: pp_http_requests_total, pp_http_request_duration_seconds.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики
var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pp_http_requests_total",
			Help: "Общее количество HTTP-запросов к Production Plan UI",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pp_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к Production Plan UI в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
// Записывает количество запросов и длительность для каждого endpoint.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Идентификаторы записей заменяются на {id}
			normalizedPath := normalizePath(r.URL.Path)

			wrapped := newMetricsResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.statusCode)

			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(duration)
		})
	}
}

// metricsResponseWriter — обёртка для перехвата статус-кода.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// normalizePath ограничивает кардинальность лейбла path.
// /ui/videos/42/tests → /ui/videos/{id}/tests, /static/... → /static/*.
func normalizePath(path string) string {
	switch path {
	case "/health/live", "/health/ready", "/metrics",
		"/ui/login", "/ui/logout", "/ui/set-language",
		"/ui/videos", "/ui/videos/new",
		"/ui/selection/toggle", "/ui/selection/clear",
		"/ui/bulk", "/ui/retention":
		return path
	}

	if strings.HasPrefix(path, "/static/") {
		return "/static/*"
	}

	const prefix = "/ui/videos/"
	if rest, ok := strings.CutPrefix(path, prefix); ok {
		id, suffix, _ := strings.Cut(rest, "/")
		if _, err := strconv.ParseInt(id, 10, 64); err != nil {
			return "other"
		}
		switch suffix {
		case "":
			return prefix + "{id}"
		case "edit", "tests", "delete":
			return prefix + "{id}/" + suffix
		}
	}

	return "other"
}
