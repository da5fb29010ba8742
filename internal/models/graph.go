package models

import (
	"slices"
	"strings"
	"time"
)

// maxGraphNameLength caps graph names.
const maxGraphNameLength = 255

// EdgeDefinition is one relation of a graph: an edge collection plus the
// vertex collections its edges may start from and point to.
// For an undirected relation From and To hold the same set.
type EdgeDefinition struct {
	Collection string   `json:"collection"`
	From       []string `json:"from"`
	To         []string `json:"to"`
	Directed   bool     `json:"directed"`
}

// GraphDefinition is a named, ordered list of edge definitions.
type GraphDefinition struct {
	Name            string           `json:"name"`
	EdgeDefinitions []EdgeDefinition `json:"edge_definitions"`
	CreatedAt       time.Time        `json:"created_at"`
}

// DirectedRelation builds a directed edge definition.
func DirectedRelation(collection string, from, to []string) EdgeDefinition {
	return EdgeDefinition{Collection: collection, From: from, To: to, Directed: true}
}

// UndirectedRelation builds an undirected edge definition over vertices.
func UndirectedRelation(collection string, vertices ...string) EdgeDefinition {
	return EdgeDefinition{Collection: collection, From: vertices, To: vertices}
}

// HasFrom reports whether collection is in the from-set.
func (d *EdgeDefinition) HasFrom(collection string) bool {
	return slices.Contains(d.From, collection)
}

// HasTo reports whether collection is in the to-set.
func (d *EdgeDefinition) HasTo(collection string) bool {
	return slices.Contains(d.To, collection)
}

// normalize validates the definition and rewrites From/To as sorted sets.
// An undirected definition without To takes To from From.
func (d *EdgeDefinition) normalize() error {
	if err := ValidateCollectionName(d.Collection); err != nil {
		return invalidDefinition("edge collection: %v", err)
	}

	if !d.Directed && len(d.To) == 0 {
		d.To = slices.Clone(d.From)
	}

	from, err := normalizeSet(d.Collection, "from", d.From)
	if err != nil {
		return err
	}

	to, err := normalizeSet(d.Collection, "to", d.To)
	if err != nil {
		return err
	}

	if !d.Directed && !slices.Equal(from, to) {
		return invalidDefinition("undirected relation %q must use the same from and to collections", d.Collection)
	}

	d.From, d.To = from, to

	return nil
}

func normalizeSet(edgeCollection, side string, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, invalidDefinition("relation %q has no %s collections", edgeCollection, side)
	}

	out := make([]string, 0, len(names))

	for _, n := range names {
		if err := ValidateCollectionName(n); err != nil {
			return nil, invalidDefinition("relation %q %s collection: %v", edgeCollection, side, err)
		}

		out = append(out, n)
	}

	slices.Sort(out)

	return slices.Compact(out), nil
}

// Validate checks the graph invariants and normalises every edge definition:
// non-empty name, well-formed relations, and no edge collection used by more
// than one relation. g gets its own copy of the relation slice, so copies of
// g made before the call keep their original relations.
func (g *GraphDefinition) Validate() error {
	if g.Name == "" {
		return invalidDefinition("name is required")
	}

	if len(g.Name) > maxGraphNameLength {
		return invalidDefinition("name exceeds maximum length of %d", maxGraphNameLength)
	}

	if strings.Contains(g.Name, "/") {
		return invalidDefinition("name %q must not contain '/'", g.Name)
	}

	g.EdgeDefinitions = slices.Clone(g.EdgeDefinitions)
	seen := make(map[string]bool, len(g.EdgeDefinitions))

	for i := range g.EdgeDefinitions {
		def := &g.EdgeDefinitions[i]
		if err := def.normalize(); err != nil {
			return err
		}

		if seen[def.Collection] {
			return invalidDefinition("edge collection %q is used by more than one relation", def.Collection)
		}

		seen[def.Collection] = true
	}

	if g.EdgeDefinitions == nil {
		g.EdgeDefinitions = []EdgeDefinition{}
	}

	return nil
}

// EdgeCollections returns the edge collection names in declaration order.
func (g *GraphDefinition) EdgeCollections() []string {
	out := make([]string, 0, len(g.EdgeDefinitions))
	for _, d := range g.EdgeDefinitions {
		out = append(out, d.Collection)
	}

	return out
}

// Clone returns a deep copy, so cached definitions are never shared mutably.
func (g *GraphDefinition) Clone() *GraphDefinition {
	cp := &GraphDefinition{
		Name:            g.Name,
		CreatedAt:       g.CreatedAt,
		EdgeDefinitions: make([]EdgeDefinition, len(g.EdgeDefinitions)),
	}

	for i, d := range g.EdgeDefinitions {
		cp.EdgeDefinitions[i] = EdgeDefinition{
			Collection: d.Collection,
			From:       slices.Clone(d.From),
			To:         slices.Clone(d.To),
			Directed:   d.Directed,
		}
	}

	return cp
}

// CreateGraphRequest is the payload for creating a graph.
type CreateGraphRequest struct {
	Name            string           `json:"name"`
	EdgeDefinitions []EdgeDefinition `json:"edge_definitions"`
}

// Definition validates the request and returns the normalised definition.
func (r *CreateGraphRequest) Definition() (GraphDefinition, error) {
	def := GraphDefinition{Name: r.Name, EdgeDefinitions: r.EdgeDefinitions}
	if err := def.Validate(); err != nil {
		return GraphDefinition{}, err
	}

	return def, nil
}
