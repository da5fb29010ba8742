package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/namedgraph/internal/models"
)

// DocumentHandler serves the bulk document import endpoint.
type DocumentHandler struct {
	repo DocumentRepository
	log  *logrus.Logger
}

// NewDocumentHandler creates a DocumentHandler with the given service and logger.
func NewDocumentHandler(repo DocumentRepository, log *logrus.Logger) *DocumentHandler {
	return &DocumentHandler{repo: repo, log: log}
}

// Import handles POST /api/v1/collections/:collection/documents.
func (h *DocumentHandler) Import(c *gin.Context) {
	collection := c.Param("collection")
	if err := models.ValidateCollectionName(collection); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	var req models.ImportDocumentsRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.repo.ImportDocuments(c.Request.Context(), collection, req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidDocument) {
			respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

			return
		}

		respondDomainError(c, h.log, "documents.import", err)

		return
	}

	c.JSON(http.StatusOK, result)
}
