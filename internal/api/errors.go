package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/namedgraph/internal/httputil"
	"github.com/persistorai/namedgraph/internal/models"
)

// Error code constants for standardized API responses.
const (
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeInvalidArgument  = "invalid_argument"
	ErrCodeValidationError  = "validation_error"
	ErrCodeGraphNotFound    = "graph_not_found"
	ErrCodeDocumentNotFound = "document_not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeUnavailable      = "unavailable"
	ErrCodePayloadTooLarge  = "payload_too_large"
	ErrCodeInternalError    = "internal_error"
)

// respondError writes a standardized JSON error response.
func respondError(c *gin.Context, status int, code, message string) {
	httputil.RespondError(c, status, code, message)
}

// bindJSON decodes the request body into v, writing a 400 (or 413 for a
// body over the size cap) and returning false on failure.
func bindJSON(c *gin.Context, v any) bool {
	err := c.ShouldBindJSON(v)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(c, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "request body too large")
		return false
	}

	respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

	return false
}

// respondDomainError maps a service error onto a status and error code.
// Anything unrecognised is logged and reported as an internal error without
// leaking its text.
func respondDomainError(c *gin.Context, log *logrus.Logger, op string, err error) {
	var dirErr *models.InvalidDirectionError

	switch {
	case errors.As(err, &dirErr):
		respondError(c, http.StatusBadRequest, ErrCodeInvalidArgument, dirErr.Error())
	case errors.Is(err, models.ErrInvalidDefinition):
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())
	case errors.Is(err, models.ErrGraphNotFound):
		respondError(c, http.StatusNotFound, ErrCodeGraphNotFound, "graph not found")
	case errors.Is(err, models.ErrVertexNotFound), errors.Is(err, models.ErrDocumentNotFound):
		respondError(c, http.StatusNotFound, ErrCodeDocumentNotFound, "document not found")
	case errors.Is(err, models.ErrDuplicateGraphName):
		respondError(c, http.StatusConflict, ErrCodeConflict, "graph already exists")
	case errors.Is(err, models.ErrStorageUnavailable):
		log.WithError(err).WithField("op", op).Error("storage unavailable")
		respondError(c, http.StatusServiceUnavailable, ErrCodeUnavailable, "storage unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		log.WithError(err).WithField("op", op).Warn("request timed out")
		respondError(c, http.StatusServiceUnavailable, ErrCodeUnavailable, "request timed out")
	default:
		log.WithError(err).WithField("op", op).Error("request failed")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	}
}
