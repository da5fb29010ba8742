package models

import (
	"encoding/json"
	"fmt"
)

// EdgesFunction is the name EDGES calls report in argument errors.
const EdgesFunction = "EDGES"

// FindEdgesRequest is the payload for an EDGES call over HTTP.
// Examples and Collections keep their raw JSON form because both accept a
// single value or a list; they are parsed by the example package.
type FindEdgesRequest struct {
	Vertex      string          `json:"vertex"`
	Direction   string          `json:"direction"`
	Examples    json.RawMessage `json:"examples,omitempty"`
	Collections json.RawMessage `json:"collections,omitempty"`
}

// Validate checks required fields on FindEdgesRequest. The direction has no
// default; it is parsed with ParseDirection so a missing or unknown literal
// fails as an EDGES argument error.
func (r *FindEdgesRequest) Validate() error {
	if r.Vertex == "" {
		return fmt.Errorf("vertex is required")
	}

	if len(r.Vertex) > 2*maxKeyLength+1 {
		return ErrFieldTooLong("vertex", 2*maxKeyLength+1)
	}

	return nil
}

// EdgesResult wraps the edges returned by EDGES.
type EdgesResult struct {
	Edges []Document `json:"edges"`
}
