// Package traversal resolves named graph topology into edge collection scans
// and runs EDGES, the single-hop incident edge lookup.
package traversal

import (
	"slices"

	"github.com/persistorai/namedgraph/internal/models"
)

// ScanTarget is one edge collection scan: the collection and the endpoint
// side the start vertex is matched against.
type ScanTarget struct {
	Collection string
	Side       models.Direction
}

// Resolve computes the scans needed to find edges incident to a vertex of
// startCollection in the requested direction.
//
// An undirected relation yields one Any scan when startCollection is one of
// its vertex collections, whatever dir is. A directed relation yields an
// Outbound scan when dir is outbound or any and startCollection is in its
// from-set, and an Inbound scan when dir is inbound or any and
// startCollection is in its to-set. Targets follow declaration order, with
// outbound before inbound inside one relation.
func Resolve(def *models.GraphDefinition, startCollection string, dir models.Direction) []ScanTarget {
	targets := make([]ScanTarget, 0, len(def.EdgeDefinitions))

	for i := range def.EdgeDefinitions {
		rel := &def.EdgeDefinitions[i]

		if !rel.Directed {
			if rel.HasFrom(startCollection) {
				targets = append(targets, ScanTarget{Collection: rel.Collection, Side: models.DirectionAny})
			}

			continue
		}

		if dir != models.DirectionInbound && rel.HasFrom(startCollection) {
			targets = append(targets, ScanTarget{Collection: rel.Collection, Side: models.DirectionOutbound})
		}

		if dir != models.DirectionOutbound && rel.HasTo(startCollection) {
			targets = append(targets, ScanTarget{Collection: rel.Collection, Side: models.DirectionInbound})
		}
	}

	return targets
}

// Restrict keeps only targets whose collection is named in collections.
// An empty restriction keeps everything. Names that are not part of the
// graph simply match nothing.
func Restrict(targets []ScanTarget, collections []string) []ScanTarget {
	if len(collections) == 0 {
		return targets
	}

	return slices.DeleteFunc(slices.Clone(targets), func(t ScanTarget) bool {
		return !slices.Contains(collections, t.Collection)
	})
}
