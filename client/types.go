package client

import "time"

// EdgeDefinition is one relation of a named graph.
type EdgeDefinition struct {
	Collection string   `json:"collection"`
	From       []string `json:"from"`
	To         []string `json:"to"`
	Directed   bool     `json:"directed"`
}

// Graph is a stored named graph definition.
type Graph struct {
	Name            string           `json:"name"`
	EdgeDefinitions []EdgeDefinition `json:"edge_definitions"`
	CreatedAt       time.Time        `json:"created_at"`
}

// CreateGraphRequest is the payload for creating a named graph.
type CreateGraphRequest struct {
	Name            string           `json:"name"`
	EdgeDefinitions []EdgeDefinition `json:"edge_definitions"`
}

// Document is a flat document object including its system attributes
// (_id, _key and, for edges, _from and _to).
type Document map[string]any

// ID returns the _id attribute.
func (d Document) ID() string { return d.str("_id") }

// Key returns the _key attribute.
func (d Document) Key() string { return d.str("_key") }

// From returns the _from attribute of an edge.
func (d Document) From() string { return d.str("_from") }

// To returns the _to attribute of an edge.
func (d Document) To() string { return d.str("_to") }

func (d Document) str(name string) string {
	s, _ := d[name].(string)
	return s
}

// FindEdgesRequest is the EDGES call. Examples may be nil, a string id,
// an object, or a list of objects and strings. Collections may be nil,
// a single name or a list of names.
type FindEdgesRequest struct {
	Vertex      string `json:"vertex"`
	Direction   string `json:"direction,omitempty"`
	Examples    any    `json:"examples,omitempty"`
	Collections any    `json:"collections,omitempty"`
}

// ImportResult is the outcome of a bulk document import.
type ImportResult struct {
	Collection string `json:"collection"`
	Imported   int    `json:"imported"`
}

// HealthResponse is the liveness check payload.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Storage       string  `json:"storage"`
	Driver        string  `json:"driver"`
	SchemaVersion int     `json:"schema_version"`
	Clients       int     `json:"clients"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// ReadyResponse is the readiness check payload.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
