package ws

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
)

// Connection limits.
const (
	clientSendBuffer = 256
	readLimit        = 4096
	writeTimeout     = 10 * time.Second
	maxLifetime      = 4 * time.Hour
	keyCheckInterval = 15 * time.Minute
	pingInterval     = 30 * time.Second
	pingTimeout      = 10 * time.Second
	maxMissedPongs   = 2
)

// KeyValidator reports whether an API key is still accepted.
type KeyValidator interface {
	ValidKey(apiKey string) bool
}

// Client is one WebSocket subscriber. The hub writes encoded events to send;
// WritePump drains it onto the connection.
type Client struct {
	ID string

	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	log         *logrus.Logger
	apiKey      string
	validator   KeyValidator
	connectedAt time.Time
	filter      atomic.Pointer[graphFilter]
	closeOnce   sync.Once
}

// NewClient wraps conn. A nil validator skips periodic key checks.
func NewClient(hub *Hub, conn *websocket.Conn, id string, validator KeyValidator, apiKey string) *Client {
	return &Client{
		ID:          id,
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, clientSendBuffer),
		log:         hub.log,
		apiKey:      apiKey,
		validator:   validator,
		connectedAt: time.Now(),
	}
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}

// follows reports whether the client wants events scoped to graph.
func (c *Client) follows(graph string) bool {
	f := c.filter.Load()
	if f == nil {
		return true
	}

	return f.matches(graph)
}

func (c *Client) logger() *logrus.Entry {
	return c.log.WithField("client_id", c.ID)
}

// ReadPump consumes client messages until the connection closes, then
// unregisters the client.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.CloseNow() //nolint:errcheck // teardown
	}()

	c.conn.SetReadLimit(readLimit)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if status := websocket.CloseStatus(err); status != -1 {
				c.logger().WithField("status", status).Debug("client disconnected")
			}

			return
		}

		c.handleMessage(ctx, data)
	}
}

// handleMessage applies a subscribe request: it replaces the graph filter
// and replays buffered events the client missed. Other messages are ignored.
func (c *Client) handleMessage(_ context.Context, data []byte) {
	var msg SubscribeMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		c.logger().Debug("ignoring malformed client message")
		return
	}

	if msg.Type != "subscribe" {
		return
	}

	f := newGraphFilter(msg.Graphs)
	c.filter.Store(&f)

	c.logger().WithFields(logrus.Fields{
		"graphs":        len(msg.Graphs),
		"last_event_id": msg.LastEventID,
	}).Debug("client subscribed")

	if c.hub.ReplayEvents(c, msg.LastEventID) {
		return
	}

	reset, err := json.Marshal(ResetMsg{
		Type:   "reset",
		Reason: "requested events no longer available, perform full refresh",
	})
	if err != nil {
		return
	}

	select {
	case c.send <- reset:
	default:
	}
}

// WritePump delivers queued events and keeps the connection healthy. It
// returns when the send channel closes, a write or ping fails, the API key
// is revoked, or the connection reaches its maximum lifetime.
func (c *Client) WritePump(ctx context.Context) {
	defer c.conn.CloseNow() //nolint:errcheck // teardown

	lifetime := time.NewTimer(time.Until(c.connectedAt.Add(maxLifetime)))
	defer lifetime.Stop()

	keyCheck := time.NewTicker(keyCheckInterval)
	defer keyCheck.Stop()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	missed := 0

	for {
		select {
		case msg, ok := <-c.send:
			if !ok || !c.write(ctx, msg) {
				return
			}

		case <-ping.C:
			if c.ping(ctx) {
				missed = 0
				continue
			}

			missed++
			if missed >= maxMissedPongs {
				c.logger().WithField("missed", missed).Debug("closing: pongs missed")
				return
			}

		case <-keyCheck.C:
			if !c.keyStillValid() {
				c.logger().Info("closing WebSocket: API key no longer accepted")
				c.conn.Close(websocket.StatusPolicyViolation, "authentication expired") //nolint:errcheck // best-effort
				return
			}

		case <-lifetime.C:
			c.logger().Info("closing WebSocket: max connection lifetime exceeded")
			c.conn.Close(websocket.StatusNormalClosure, "max connection lifetime exceeded") //nolint:errcheck // best-effort
			return
		}
	}
}

func (c *Client) write(ctx context.Context, msg []byte) bool {
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := c.conn.Write(writeCtx, websocket.MessageText, msg); err != nil {
		c.logger().WithError(err).Debug("write failed")
		return false
	}

	return true
}

func (c *Client) ping(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	return c.conn.Ping(pingCtx) == nil
}

func (c *Client) keyStillValid() bool {
	return c.validator == nil || c.validator.ValidKey(c.apiKey)
}
