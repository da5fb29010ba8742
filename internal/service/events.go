package service

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"
)

// Event types published to WebSocket subscribers.
const (
	EventGraphCreated      = "graph.created"
	EventGraphDropped      = "graph.dropped"
	EventDocumentsImported = "documents.imported"
)

// Publisher delivers a typed event to subscribers. *ws.Hub satisfies it.
type Publisher interface {
	BroadcastEvent(eventType string, data json.RawMessage)
}

// EventEnqueuer accepts events for asynchronous publication.
type EventEnqueuer interface {
	Enqueue(job *EventJob)
}

// EventJob is a single event waiting to be published.
type EventJob struct {
	Type string
	Data map[string]any
}

// EventWorker buffers events and publishes them from a single goroutine so
// request handlers never block on subscribers.
type EventWorker struct {
	publisher Publisher
	log       *logrus.Logger
	jobs      chan *EventJob
}

// NewEventWorker creates an EventWorker with the given queue capacity.
func NewEventWorker(publisher Publisher, log *logrus.Logger, queueSize int) *EventWorker {
	if queueSize <= 0 {
		queueSize = 1000
	}

	return &EventWorker{
		publisher: publisher,
		log:       log,
		jobs:      make(chan *EventJob, queueSize),
	}
}

// Enqueue adds an event. Non-blocking; drops the event if the queue is full.
func (w *EventWorker) Enqueue(job *EventJob) {
	select {
	case w.jobs <- job:
	default:
		w.log.WithField("type", job.Type).Warn("event queue full, dropping event")
	}
}

// Run publishes events until the context is cancelled, then drains remaining events.
func (w *EventWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		case job := <-w.jobs:
			w.process(job)
		}
	}
}

func (w *EventWorker) drain() {
	for {
		select {
		case job := <-w.jobs:
			w.process(job)
		default:
			return
		}
	}
}

func (w *EventWorker) process(job *EventJob) {
	data, err := json.Marshal(job.Data)
	if err != nil {
		w.log.WithError(err).WithField("type", job.Type).Warn("event payload not encodable")
		return
	}

	w.publisher.BroadcastEvent(job.Type, data)
}

// enqueue is a nil-safe helper used by the services.
func enqueue(q EventEnqueuer, eventType string, data map[string]any) {
	if q == nil {
		return
	}

	q.Enqueue(&EventJob{Type: eventType, Data: data})
}
