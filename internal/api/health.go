// Package api provides the HTTP handlers for the named graph service.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/namedgraph/internal/db"
)

// ClientCounter reports connected event stream clients.
type ClientCounter interface {
	ClientCount() int
}

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	backend   Pinger
	hub       ClientCounter
	log       *logrus.Logger
	version   string
	driver    string
	startTime time.Time
}

// NewHealthHandler creates a HealthHandler. backend and hub may be nil.
func NewHealthHandler(backend Pinger, hub ClientCounter, log *logrus.Logger, version, driver string) *HealthHandler {
	return &HealthHandler{
		backend:   backend,
		hub:       hub,
		log:       log,
		version:   version,
		driver:    driver,
		startTime: time.Now(),
	}
}

// readinessResponse is the JSON payload returned by the readiness endpoint.
type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// healthResponse is the JSON payload returned by the health/liveness endpoint.
type healthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Storage       string  `json:"storage"`
	Driver        string  `json:"driver"`
	SchemaVersion int     `json:"schema_version"`
	Clients       int     `json:"clients"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Liveness handles GET /api/v1/health. The storage ping is best-effort.
func (h *HealthHandler) Liveness(c *gin.Context) {
	resp := healthResponse{
		Status:        "ok",
		Version:       h.version,
		Storage:       "connected",
		Driver:        h.driver,
		SchemaVersion: db.SchemaVersionFor(h.driver),
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}

	if h.backend != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.backend.Ping(ctx); err != nil {
			resp.Storage = "disconnected"
		}
	} else {
		resp.Storage = "not_configured"
	}

	if h.hub != nil {
		resp.Clients = h.hub.ClientCount()
	}

	c.JSON(http.StatusOK, resp)
}

// Readiness handles GET /api/v1/ready.
func (h *HealthHandler) Readiness(c *gin.Context) {
	checks := map[string]string{"storage": "ok"}
	status := "ready"
	statusCode := http.StatusOK

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	switch {
	case h.backend == nil:
		checks["storage"] = "not_configured"
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	default:
		if err := h.backend.Ping(ctx); err != nil {
			h.log.WithError(err).Error("readiness: storage ping failed")
			checks["storage"] = "error"
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
		}
	}

	c.JSON(statusCode, readinessResponse{
		Status: status,
		Checks: checks,
	})
}
