package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

type HealthHandlers struct {
	checks map[string]HealthCheck
	log    zerolog.Logger
}

func NewHealthHandlers(checks map[string]HealthCheck, log zerolog.Logger) *HealthHandlers {
	return &HealthHandlers{checks: checks, log: log}
}

func (h *HealthHandlers) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.log.Warn().Err(err).Str("dependency", name).Msg("health check failed")
			results[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	c.JSON(status, gin.H{
		"success": status == http.StatusOK,
		"checks":  results,
	})
}
