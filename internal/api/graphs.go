package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/namedgraph/internal/models"
)

// GraphHandler serves graph definition endpoints.
type GraphHandler struct {
	repo GraphRepository
	log  *logrus.Logger
}

// NewGraphHandler creates a GraphHandler with the given service and logger.
func NewGraphHandler(repo GraphRepository, log *logrus.Logger) *GraphHandler {
	return &GraphHandler{repo: repo, log: log}
}

// Create handles POST /api/v1/graphs.
func (h *GraphHandler) Create(c *gin.Context) {
	var req models.CreateGraphRequest
	if !bindJSON(c, &req) {
		return
	}

	graph, err := h.repo.CreateGraph(c.Request.Context(), req)
	if err != nil {
		respondDomainError(c, h.log, "graph.create", err)

		return
	}

	c.JSON(http.StatusCreated, graph)
}

// List handles GET /api/v1/graphs.
func (h *GraphHandler) List(c *gin.Context) {
	graphs, err := h.repo.ListGraphs(c.Request.Context())
	if err != nil {
		respondDomainError(c, h.log, "graph.list", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"graphs": graphs})
}

// Get handles GET /api/v1/graphs/:name.
func (h *GraphHandler) Get(c *gin.Context) {
	name, ok := graphParam(c)
	if !ok {
		return
	}

	graph, err := h.repo.GetGraph(c.Request.Context(), name)
	if err != nil {
		respondDomainError(c, h.log, "graph.get", err)

		return
	}

	c.JSON(http.StatusOK, graph)
}

// Drop handles DELETE /api/v1/graphs/:name.
func (h *GraphHandler) Drop(c *gin.Context) {
	name, ok := graphParam(c)
	if !ok {
		return
	}

	if err := h.repo.DropGraph(c.Request.Context(), name); err != nil {
		respondDomainError(c, h.log, "graph.drop", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"dropped": true})
}
