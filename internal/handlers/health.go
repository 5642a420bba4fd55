package handlers

import (
	"context"
	"net/http"
	"time"

	"hunttickets/internal/logger"
	"hunttickets/internal/models"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 3 * time.Second

// HealthCheck checks one dependency; a nil error means healthy.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type healthReport struct {
	Status        string            `json:"status"`
	Service       string            `json:"service"`
	Version       string            `json:"version"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Timestamp     time.Time         `json:"timestamp"`
	Checks        map[string]string `json:"checks"`
}

// Health - GET /health
func (h *Handlers) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	now := h.now()
	report := healthReport{
		Status:        "healthy",
		Service:       logger.ServiceName,
		Version:       h.version,
		UptimeSeconds: int64(now.Sub(h.startedAt).Seconds()),
		Timestamp:     now.UTC(),
		Checks:        make(map[string]string, len(h.checks)),
	}

	for _, hc := range h.checks {
		if err := hc.Check(ctx); err != nil {
			logger.WithContext(ctx).Error("Health check failed", "check", hc.Name, "error", err)
			report.Checks[hc.Name] = "error: " + err.Error()
			report.Status = "unhealthy"
			continue
		}
		report.Checks[hc.Name] = "ok"
	}

	if report.Status != "healthy" {
		c.JSON(http.StatusServiceUnavailable, models.APIResponse{Success: false, Data: report, Error: "Service unhealthy"})
		return
	}
	respond(c, http.StatusOK, report, "")
}
