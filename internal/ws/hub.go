// Package ws streams graph change events to WebSocket clients.
package ws

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/namedgraph/internal/metrics"
)

// outbound is an encoded event queued for delivery to the clients that
// follow its graph.
type outbound struct {
	graph string
	msg   []byte
}

// Hub limits.
const (
	broadcastBuffer = 256
	registerBuffer  = 64
	maxClients      = 1000

	drainTimeout      = 3 * time.Second
	drainPollInterval = 50 * time.Millisecond
)

// Hub fans graph change events out to WebSocket clients. The clients map is
// owned by the Run goroutine; everything else talks to it over channels.
type Hub struct {
	log     *logrus.Logger
	seq     atomic.Uint64
	buffer  *EventBuffer
	clients map[*Client]struct{}
	count   atomic.Int64

	register   chan *Client
	unregister chan *Client
	broadcast  chan outbound
	shutdown   chan struct{}
	done       chan struct{}
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		log:        log,
		buffer:     NewEventBuffer(defaultBufferMaxLen, defaultBufferMaxAge),
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client, registerBuffer),
		unregister: make(chan *Client, registerBuffer),
		broadcast:  make(chan outbound, broadcastBuffer),
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Run owns the client set until ctx ends or Shutdown is called, then drains
// every client before returning.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	defer h.drainClients()

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.shutdown:
			return
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.remove(c)
		case out := <-h.broadcast:
			h.deliver(out)
		}
	}
}

func (h *Hub) add(c *Client) {
	if len(h.clients) >= maxClients {
		h.log.WithField("max", maxClients).Warn("connection limit reached, dropping client")
		c.closeSend()
		return
	}

	h.clients[c] = struct{}{}
	h.updateCount()
	h.log.WithFields(logrus.Fields{"client_id": c.ID, "total": len(h.clients)}).Info("client registered")
}

func (h *Hub) remove(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}

	delete(h.clients, c)
	c.closeSend()
	h.updateCount()
	h.log.WithFields(logrus.Fields{"client_id": c.ID, "total": len(h.clients)}).Info("client unregistered")
}

// deliver queues out on every following client. A client whose send buffer
// is full is disconnected rather than allowed to stall the hub.
func (h *Hub) deliver(out outbound) {
	dropped := 0

	for c := range h.clients {
		if !c.follows(out.graph) {
			continue
		}

		select {
		case c.send <- out.msg:
		default:
			h.log.WithField("client_id", c.ID).Warn("client too slow, disconnecting")
			delete(h.clients, c)
			c.closeSend()
			dropped++
		}
	}

	if dropped > 0 {
		h.updateCount()
	}
}

func (h *Hub) updateCount() {
	h.count.Store(int64(len(h.clients)))
	metrics.WSConnections.Set(float64(len(h.clients)))
}

// maxBroadcastPayload is the maximum allowed notification payload size (4 KB).
const maxBroadcastPayload = 4096

// enqueue hands an encoded event to the Run goroutine. Payloads over
// maxBroadcastPayload are dropped with a warning.
func (h *Hub) enqueue(graph string, msg []byte) {
	if len(msg) > maxBroadcastPayload {
		h.log.WithFields(logrus.Fields{
			"graph":        graph,
			"payload_size": len(msg),
			"max_size":     maxBroadcastPayload,
		}).Warn("dropping oversized broadcast payload")
		return
	}

	select {
	case h.broadcast <- outbound{graph: graph, msg: msg}:
	default:
		h.log.Warn("broadcast channel full, dropping message")
	}
}

// Register hands c to the Run goroutine. If the hub is saturated the
// client is closed immediately.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	default:
		h.log.Warn("register channel full, dropping client")
		c.closeSend()
	}
}

// Unregister removes c. It never blocks; after Run has exited the drain has
// already closed every client.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	default:
	}
}

// ClientCount is the number of registered clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// BroadcastEvent assigns the next sequence ID, buffers the event for replay
// and delivers it to every client following the graph named in data.
func (h *Hub) BroadcastEvent(eventType string, data json.RawMessage) {
	evt := Event{
		Type:  eventType,
		ID:    h.seq.Add(1),
		Graph: eventGraph(data),
		Data:  data,
		Time:  time.Now(),
	}

	msg, err := json.Marshal(evt)
	if err != nil {
		h.log.WithError(err).WithField("type", eventType).Error("encoding event")
		return
	}

	h.buffer.Append(&evt)
	h.enqueue(evt.Graph, msg)
}

// ReplayEvents queues the buffered events after lastEventID that c follows.
// It returns false when events after lastEventID have already been evicted,
// in which case the client must resynchronise from scratch.
func (h *Hub) ReplayEvents(c *Client, lastEventID uint64) bool {
	if oldest := h.buffer.OldestID(); lastEventID > 0 && lastEventID+1 < oldest {
		return false
	}

	for _, evt := range h.buffer.Since(lastEventID) {
		if !c.follows(evt.Graph) {
			continue
		}

		msg, err := json.Marshal(evt)
		if err != nil {
			continue
		}

		select {
		case c.send <- msg:
		default:
			h.log.WithField("client_id", c.ID).Warn("send buffer full, replay truncated")
			return true
		}
	}

	return true
}

// Shutdown stops Run and blocks until every client has been drained.
func (h *Hub) Shutdown() {
	close(h.shutdown)
	<-h.done
}

// drainClients tells every client the server is going away, waits up to
// drainTimeout for their send buffers to empty, then closes them.
func (h *Hub) drainClients() {
	if len(h.clients) == 0 {
		return
	}

	h.log.WithField("clients", len(h.clients)).Info("draining WebSocket clients")

	for client := range h.clients {
		select {
		case client.send <- shutdownMsg:
		default:
		}
	}

	if !h.waitFlushed(drainTimeout) {
		h.log.Warn("WebSocket drain timeout, closing remaining clients")
	}

	for client := range h.clients {
		client.closeSend()
		delete(h.clients, client)
	}

	h.updateCount()
}

var shutdownMsg = []byte(`{"type":"shutdown","message":"server shutting down"}`)

// waitFlushed polls until every client's send buffer is empty. It reports
// false if timeout passes first.
func (h *Hub) waitFlushed(timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	poll := time.NewTicker(drainPollInterval)
	defer poll.Stop()

	for {
		pending := false
		for client := range h.clients {
			if len(client.send) > 0 {
				pending = true
				break
			}
		}

		if !pending {
			return true
		}

		select {
		case <-deadline.C:
			return false
		case <-poll.C:
		}
	}
}
