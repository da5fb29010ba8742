package ws

import (
	"encoding/json"
	"time"
)

// Event is the structured message sent to WebSocket clients. Graph is empty
// for events that are not tied to one graph, such as document imports.
type Event struct {
	Type  string          `json:"type"`
	ID    uint64          `json:"id"`
	Graph string          `json:"graph,omitempty"`
	Data  json.RawMessage `json:"data"`
	Time  time.Time       `json:"time"`
}

// SubscribeMsg is sent by a client to choose which graphs it follows and to
// request replay of everything after LastEventID. An empty Graphs list
// follows every graph.
type SubscribeMsg struct {
	Type        string   `json:"type"`
	LastEventID uint64   `json:"last_event_id"`
	Graphs      []string `json:"graphs,omitempty"`
}

// ResetMsg tells the client to do a full refresh (requested events too old).
type ResetMsg struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// eventGraph pulls the graph name out of an event payload. Service events
// carry it as "name", storage notifications as "graph".
func eventGraph(data json.RawMessage) string {
	var scope struct {
		Graph string `json:"graph"`
		Name  string `json:"name"`
	}
	if len(data) == 0 || json.Unmarshal(data, &scope) != nil {
		return ""
	}

	if scope.Graph != "" {
		return scope.Graph
	}

	return scope.Name
}

// graphFilter is the set of graphs a client follows. A nil filter matches
// everything.
type graphFilter map[string]struct{}

func newGraphFilter(graphs []string) graphFilter {
	if len(graphs) == 0 {
		return nil
	}

	f := make(graphFilter, len(graphs))
	for _, g := range graphs {
		f[g] = struct{}{}
	}

	return f
}

// matches reports whether an event scoped to graph passes the filter.
// Unscoped events always pass.
func (f graphFilter) matches(graph string) bool {
	if f == nil || graph == "" {
		return true
	}

	_, ok := f[graph]

	return ok
}
