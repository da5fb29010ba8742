package api

import (
	"context"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/namedgraph/internal/middleware"
	"github.com/persistorai/namedgraph/internal/ws"
)

// wsCompressionThreshold is the smallest message worth compressing.
const wsCompressionThreshold = 128

// eventStream upgrades GET /api/v1/ws and attaches the connection to the hub.
type eventStream struct {
	appCtx    context.Context
	log       *logrus.Logger
	hub       *ws.Hub
	origins   []string
	validator ws.KeyValidator
}

func newEventStream(appCtx context.Context, log *logrus.Logger, hub *ws.Hub, origins []string, keys *middleware.KeySet) *eventStream {
	s := &eventStream{appCtx: appCtx, log: log, hub: hub, origins: origins}

	// A nil validator (not a nil *KeySet) disables periodic key checks.
	if keys != nil && keys.Len() > 0 {
		s.validator = keys
	}

	return s
}

// Serve blocks for the lifetime of the connection. The connection ends when
// the client goes away, the request context ends or the server shuts down.
func (s *eventStream) Serve(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns:       s.origins,
		CompressionMode:      websocket.CompressionContextTakeover,
		CompressionThreshold: wsCompressionThreshold,
	})
	if err != nil {
		s.log.WithError(err).Warn("websocket accept failed")
		return
	}

	id := uuid.NewString()
	client := ws.NewClient(s.hub, conn, id, s.validator, middleware.ExtractBearerToken(c))
	s.hub.Register(client)

	s.log.WithFields(logrus.Fields{
		"client_id":  id,
		"request_id": c.GetString(middleware.RequestIDKey),
	}).Debug("websocket connected")

	ctx, cancel := context.WithCancel(s.appCtx)
	defer cancel()

	stop := context.AfterFunc(c.Request.Context(), cancel)
	defer stop()

	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
