package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal - общее количество запросов
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Общее количество HTTP запросов",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration - длительность запросов
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Длительность HTTP запросов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// RequestsInFlight - количество запросов в обработке
	RequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Текущее количество запросов в обработке",
		},
	)

	// LifecycleTransitionsTotal - переходы статусов тендеров и рейсов
	LifecycleTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifecycle_transitions_total",
			Help: "Количество переходов статусов по сущностям и операциям",
		},
		[]string{"entity", "op", "result"},
	)

	// ListCacheRequestsTotal - обращения к кэшу списков
	ListCacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "list_cache_requests_total",
			Help: "Количество обращений к кэшу списков",
		},
		[]string{"entity", "hit"},
	)
)

// PrometheusMiddleware собирает метрики для HTTP запросов
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Увеличиваем счетчик запросов в обработке
		RequestsInFlight.Inc()
		defer RequestsInFlight.Dec()

		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()

		status := strconv.Itoa(c.Writer.Status())
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}

		RequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(duration)
	}
}

// TrackLifecycleTransition отслеживает исход операции жизненного цикла
func TrackLifecycleTransition(entity, op, result string) {
	LifecycleTransitionsTotal.WithLabelValues(entity, op, result).Inc()
}

// TrackCacheRequest отслеживает попадание или промах кэша списков
func TrackCacheRequest(entity string, hit bool) {
	ListCacheRequestsTotal.WithLabelValues(entity, strconv.FormatBool(hit)).Inc()
}
