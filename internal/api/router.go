package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/namedgraph/internal/middleware"
	"github.com/persistorai/namedgraph/internal/ws"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log         *logrus.Logger
	Backend     Pinger
	Hub         *ws.Hub
	Graphs      GraphRepository
	Edges       EdgeRepository
	Documents   DocumentRepository
	Keys        *middleware.KeySet
	CORSOrigins []string
	Version     string
	Driver      string
}

// Router-level limits.
const (
	maxBodySize = 10 << 20 // 10 MB
	rateLimit   = 100      // requests per second per client
	rateBurst   = 200
	corsMaxAge  = time.Hour
)

// NewRouter builds the HTTP handler: global middleware, the public probes
// and metrics, then the authenticated /api/v1 surface.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	r.SetTrustedProxies(nil) //nolint:errcheck // nil never fails

	r.Use(
		middleware.RequestID(),
		requestLogger(deps.Log),
		gin.Recovery(),
		middleware.SecurityHeaders(),
		middleware.MaxBodySize(maxBodySize),
		cors.New(cors.Config{
			AllowOrigins: deps.CORSOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{"Content-Type", "Authorization", middleware.RequestIDHeader},
			MaxAge:       corsMaxAge,
		}),
		middleware.NewRateLimiter(rateLimit, rateBurst).Handler(),
		middleware.PrometheusMiddleware(),
	)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	mountProbes(v1, deps)
	mountAPI(ctx, v1, deps)

	return r
}

func mountProbes(v1 *gin.RouterGroup, deps *RouterDeps) {
	// Avoid a typed-nil ClientCounter when no hub is configured.
	var clients ClientCounter
	if deps.Hub != nil {
		clients = deps.Hub
	}

	health := NewHealthHandler(deps.Backend, clients, deps.Log, deps.Version, deps.Driver)
	v1.GET("/health", health.Liveness)
	v1.GET("/ready", health.Readiness)
}

// mountAPI registers every authenticated route. With no keys configured
// AuthMiddleware lets everything through.
func mountAPI(ctx context.Context, v1 *gin.RouterGroup, deps *RouterDeps) {
	keys := deps.Keys
	if keys == nil {
		keys = middleware.NewKeySet()
	}

	guard := middleware.NewBruteForceGuard(deps.Log)
	authed := v1.Group("", middleware.BruteForceMiddleware(guard), middleware.AuthMiddleware(keys, deps.Log, guard))

	graphs := NewGraphHandler(deps.Graphs, deps.Log)
	edges := NewEdgeHandler(deps.Edges, deps.Log)
	documents := NewDocumentHandler(deps.Documents, deps.Log)

	authed.GET("/graphs", graphs.List)
	authed.POST("/graphs", graphs.Create)

	named := authed.Group("/graphs/:name")
	named.GET("", graphs.Get)
	named.DELETE("", graphs.Drop)
	named.GET("/edges", edges.Query)
	named.POST("/edges", edges.Find)

	authed.POST("/collections/:collection/documents", documents.Import)

	if deps.Hub != nil {
		authed.GET("/ws", newEventStream(ctx, deps.Log, deps.Hub, deps.CORSOrigins, keys).Serve)
	}
}
