package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/namedgraph/internal/dbpool"
)

// validChannel matches safe PostgreSQL LISTEN channel names.
var validChannel = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// GraphChangesChannel is the NOTIFY channel graph definition changes are published on.
const GraphChangesChannel = "graph_changes"

// Reconnect timing.
const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
	backoffJitter  = 25 // percent
	readDeadline   = 2 * time.Minute
	// healthyUptime is how long a subscription must last before the next
	// reconnect starts again from initialBackoff.
	healthyUptime = time.Minute
)

// GraphChange is the payload published on GraphChangesChannel.
type GraphChange struct {
	Op     string `json:"op"`
	Graph  string `json:"graph"`
	Origin string `json:"origin"`
}

// Broadcaster sends events to connected clients.
type Broadcaster interface {
	BroadcastEvent(eventType string, data json.RawMessage)
}

// Invalidator drops cached state for a graph.
type Invalidator interface {
	Invalidate(name string)
}

// NotifyBridge subscribes to graph_changes and keeps this instance coherent
// with changes made elsewhere: every notification evicts the graph from the
// local cache, and notifications from other instances are forwarded to
// WebSocket clients.
type NotifyBridge struct {
	log      *logrus.Logger
	pool     *dbpool.Pool
	cache    Invalidator
	hub      Broadcaster
	instance string
}

// NewNotifyBridge creates a NotifyBridge. instance identifies this process so
// its own notifications are not re-broadcast.
func NewNotifyBridge(log *logrus.Logger, pool *dbpool.Pool, cache Invalidator, hub Broadcaster, instance string) *NotifyBridge {
	return &NotifyBridge{
		log:      log,
		pool:     pool,
		cache:    cache,
		hub:      hub,
		instance: instance,
	}
}

// Start launches the LISTEN/NOTIFY loop in a background goroutine.
// It verifies the initial connection before returning. The background
// goroutine handles reconnection for subsequent failures.
func (b *NotifyBridge) Start(ctx context.Context) error {
	if !validChannel.MatchString(GraphChangesChannel) {
		return fmt.Errorf("notify bridge: invalid channel name %q", GraphChangesChannel)
	}

	if err := b.pool.Ping(ctx); err != nil {
		return fmt.Errorf("notify bridge: database not reachable: %w", err)
	}

	go b.listen(ctx)

	return nil
}

// listen keeps a LISTEN connection open until ctx ends, reconnecting with
// capped exponential backoff.
func (b *NotifyBridge) listen(ctx context.Context) {
	backoff := newRestartingBackoff(reconnectBackoff)

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		started := time.Now()
		err := b.subscribeAndForward(ctx)
		if err == nil || ctx.Err() != nil {
			return nil
		}

		backoff.observe(time.Since(started))

		b.log.WithError(err).Warn("notify bridge connection lost, reconnecting")

		return retry.RetryableError(err)
	})
	if err != nil && ctx.Err() == nil {
		b.log.WithError(err).Error("notify bridge stopped")
	}
}

func reconnectBackoff() retry.Backoff {
	return retry.WithJitterPercent(backoffJitter,
		retry.WithCappedDuration(maxBackoff, retry.NewExponential(initialBackoff)))
}

// restartingBackoff delegates to a backoff built by newBackoff and starts a
// fresh one after a subscription stayed up for healthyUptime. retry.Do calls
// Next from the goroutine running the attempt, so no locking is needed.
type restartingBackoff struct {
	newBackoff func() retry.Backoff
	current    retry.Backoff
}

func newRestartingBackoff(newBackoff func() retry.Backoff) *restartingBackoff {
	return &restartingBackoff{newBackoff: newBackoff, current: newBackoff()}
}

// Next implements retry.Backoff.
func (r *restartingBackoff) Next() (time.Duration, bool) {
	return r.current.Next()
}

// observe records how long the last subscription lasted.
func (r *restartingBackoff) observe(uptime time.Duration) {
	if uptime >= healthyUptime {
		r.current = r.newBackoff()
	}
}

func (b *NotifyBridge) subscribeAndForward(ctx context.Context) error {
	conn, err := b.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Release()

	// LISTEN takes the channel inline, not as a parameter.
	sanitizedChannel := pgx.Identifier{GraphChangesChannel}.Sanitize()
	if _, err := conn.Exec(ctx, "LISTEN "+sanitizedChannel); err != nil {
		return fmt.Errorf("executing LISTEN: %w", err)
	}

	b.log.WithField("channel", GraphChangesChannel).Info("notify bridge listening")

	for {
		// Periodic deadline so ctx cancellation is noticed.
		if err := conn.Conn().PgConn().Conn().SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
			return fmt.Errorf("setting read deadline: %w", err)
		}

		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}

			return fmt.Errorf("waiting for notification: %w", err)
		}

		b.handleNotification(notification)
	}
}

// handleNotification applies a single graph change payload.
func (b *NotifyBridge) handleNotification(n *pgconn.Notification) {
	b.log.WithFields(logrus.Fields{
		"channel": n.Channel,
		"pid":     n.PID,
	}).Debug("notification received")

	var change GraphChange
	if err := json.Unmarshal([]byte(n.Payload), &change); err != nil || change.Graph == "" {
		b.log.Warn("dropping notification without graph name")
		return
	}

	b.cache.Invalidate(change.Graph)

	if change.Origin == b.instance {
		return
	}

	b.hub.BroadcastEvent("graph."+change.Op, json.RawMessage(n.Payload))
}
