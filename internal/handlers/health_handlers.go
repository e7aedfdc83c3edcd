package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func NewHealthHandlers(db *pgxpool.Pool, redisClient *redis.Client) *HealthHandlers {
	return &HealthHandlers{
		db:    db,
		redis: redisClient,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// HealthCheck reports connectivity of the backing services
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx := c.Request().Context()
	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
	}

	if err := h.db.Ping(ctx); err != nil {
		health.Services["database"] = "unhealthy"
		health.Status = "degraded"
	} else {
		health.Services["database"] = "healthy"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			health.Services["redis"] = "unhealthy"
			health.Status = "degraded"
		} else {
			health.Services["redis"] = "healthy"
		}
	}

	statusCode := http.StatusOK
	if health.Status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	return c.JSON(statusCode, health)
}

// ReadinessCheck determines if the application is ready to serve traffic
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.db.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"message": "Database unavailable",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// LivenessCheck is a basic liveness probe
func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "alive",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// MetricsResponse represents application metrics
type MetricsResponse struct {
	Timestamp  time.Time              `json:"timestamp"`
	Goroutines int                    `json:"goroutines"`
	Metrics    map[string]interface{} `json:"metrics"`
}

// GetMetrics provides application performance metrics
func (h *HealthHandlers) GetMetrics(c echo.Context) error {
	stat := h.db.Stat()
	metrics := &MetricsResponse{
		Timestamp:  time.Now().UTC(),
		Goroutines: runtime.NumGoroutine(),
		Metrics: map[string]interface{}{
			"database_connections": map[string]interface{}{
				"max":   h.db.Config().MaxConns,
				"total": stat.TotalConns(),
				"idle":  stat.IdleConns(),
			},
		},
	}

	return c.JSON(http.StatusOK, metrics)
}
