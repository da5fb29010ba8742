// Package httputil provides shared HTTP response helpers.
package httputil

import (
	"github.com/gin-gonic/gin"

	"github.com/persistorai/namedgraph/internal/metrics"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// RespondError writes a standardized JSON error response, counts it by code
// and aborts the request.
func RespondError(c *gin.Context, status int, code, message string) {
	metrics.ErrorsTotal.WithLabelValues(code).Inc()

	c.AbortWithStatusJSON(status, ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: c.GetString("request_id"),
	})
}
