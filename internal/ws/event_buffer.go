package ws

import (
	"slices"
	"sync"
	"time"
)

// Replay window defaults.
const (
	defaultBufferMaxLen = 1000
	defaultBufferMaxAge = time.Hour
)

// EventBuffer keeps the most recent events, bounded by count and age, so a
// reconnecting client can catch up from its last seen ID. Events must be
// appended in increasing ID order.
type EventBuffer struct {
	mu     sync.RWMutex
	events []Event
	maxLen int
	maxAge time.Duration
	now    func() time.Time
}

func NewEventBuffer(maxLen int, maxAge time.Duration) *EventBuffer {
	return &EventBuffer{maxLen: maxLen, maxAge: maxAge, now: time.Now}
}

// Append adds event and drops entries that fell out of the window.
func (eb *EventBuffer) Append(event *Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.events = append(eb.events, *event)

	cutoff := eb.now().Add(-eb.maxAge)
	drop := 0
	for drop < len(eb.events) && eb.events[drop].Time.Before(cutoff) {
		drop++
	}

	if over := len(eb.events) - drop - eb.maxLen; over > 0 {
		drop += over
	}

	if drop > 0 {
		eb.events = slices.Delete(eb.events, 0, drop)
	}
}

// Since returns a copy of the buffered events with ID greater than
// lastEventID, or nil if there are none.
func (eb *EventBuffer) Since(lastEventID uint64) []Event {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	i, found := slices.BinarySearchFunc(eb.events, lastEventID, func(e Event, id uint64) int {
		switch {
		case e.ID < id:
			return -1
		case e.ID > id:
			return 1
		default:
			return 0
		}
	})
	if found {
		i++
	}

	if i >= len(eb.events) {
		return nil
	}

	return slices.Clone(eb.events[i:])
}

// OldestID is the ID of the oldest buffered event, or 0 when empty.
func (eb *EventBuffer) OldestID() uint64 {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if len(eb.events) == 0 {
		return 0
	}

	return eb.events[0].ID
}
