package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/harentsoaR/medlab-api/internal/response"
)

const healthPingTimeout = 2 * time.Second

type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health always answers 200 while the process is up; the database field
// reports whether MongoDB answered a ping.
func (h *Handler) Health(c *gin.Context) {
	status := HealthStatus{Status: "ok", Database: "connected"}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
	defer cancel()
	if h.DB == nil {
		status.Database = "disconnected"
	} else if err := h.DB.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("health check: database ping failed")
		status.Database = "disconnected"
	}
	response.OK(c, status)
}
