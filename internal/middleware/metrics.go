package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ikaze_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// ToggleOutcomes counts like/follow toggle results by relation and action.
	// The "raced" action marks toggles resolved by the uniqueness constraint
	// rather than by this request's own write.
	ToggleOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ikaze_toggle_outcomes_total",
		Help: "Total number of membership toggles by relation kind and action",
	}, []string{"relation", "action"})
)

// InitMetrics creates the Prometheus middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the request-level Prometheus middleware handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
