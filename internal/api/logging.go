package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/namedgraph/internal/middleware"
)

// quietPaths are probed often enough that logging them at info drowns out
// real traffic.
var quietPaths = map[string]bool{
	"/api/v1/health": true,
	"/api/v1/ready":  true,
	"/metrics":       true,
}

// requestLogger writes one access log line per request. Server errors log
// at error, client errors at warn, probes at debug.
func requestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		entry := log.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"route":       c.FullPath(),
			"path":        c.Request.URL.Path,
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
			"client":      c.ClientIP(),
			"request_id":  c.GetString(middleware.RequestIDKey),
		})

		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("request")
		case status >= http.StatusBadRequest:
			entry.Warn("request")
		case quietPaths[c.Request.URL.Path]:
			entry.Debug("request")
		default:
			entry.Info("request")
		}
	}
}
