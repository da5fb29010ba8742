package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/namedgraph/internal/domain"
	"github.com/persistorai/namedgraph/internal/example"
	"github.com/persistorai/namedgraph/internal/models"
)

// EdgeHandler serves the EDGES endpoints.
type EdgeHandler struct {
	repo EdgeRepository
	log  *logrus.Logger
}

// NewEdgeHandler creates an EdgeHandler with the given service and logger.
func NewEdgeHandler(repo EdgeRepository, log *logrus.Logger) *EdgeHandler {
	return &EdgeHandler{repo: repo, log: log}
}

// Find handles POST /api/v1/graphs/:name/edges.
//
// The body carries the vertex, the direction and the optional examples and
// collections arguments, each in any of their accepted shorthand forms.
func (h *EdgeHandler) Find(c *gin.Context) {
	graph, ok := graphParam(c)
	if !ok {
		return
	}

	var req models.FindEdgesRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	examples, err := example.ParsePatternsJSON(req.Examples)
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidArgument, err.Error())

		return
	}

	collections, err := example.ParseRestrictionsJSON(req.Collections)
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidArgument, err.Error())

		return
	}

	h.find(c, domain.EdgeRequest{
		Graph:       graph,
		Vertex:      req.Vertex,
		Direction:   req.Direction,
		Examples:    examples,
		Collections: collections,
	})
}

// Query handles GET /api/v1/graphs/:name/edges?vertex=&direction=&collection=.
// Examples are only accepted by the POST form.
func (h *EdgeHandler) Query(c *gin.Context) {
	graph, ok := graphParam(c)
	if !ok {
		return
	}

	req := models.FindEdgesRequest{
		Vertex:    c.Query("vertex"),
		Direction: c.Query("direction"),
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	collections, err := example.ParseRestrictions(c.QueryArray("collection"))
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidArgument, err.Error())

		return
	}

	h.find(c, domain.EdgeRequest{
		Graph:       graph,
		Vertex:      req.Vertex,
		Direction:   req.Direction,
		Collections: collections,
	})
}

func (h *EdgeHandler) find(c *gin.Context, req domain.EdgeRequest) {
	if _, err := models.ParseDirection(models.EdgesFunction, req.Direction); err != nil {
		respondDomainError(c, h.log, "graph.edges", err)

		return
	}

	edges, err := h.repo.FindEdges(c.Request.Context(), req)
	if err != nil {
		respondDomainError(c, h.log, "graph.edges", err)

		return
	}

	c.JSON(http.StatusOK, models.EdgesResult{Edges: edges})
}
