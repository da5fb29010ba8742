package traversal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	"github.com/persistorai/namedgraph/internal/domain"
	"github.com/persistorai/namedgraph/internal/example"
	"github.com/persistorai/namedgraph/internal/memstore"
	"github.com/persistorai/namedgraph/internal/models"
)

// TestFeatures runs the Gherkin EDGES scenarios against the in-memory backend.
func TestFeatures(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping feature tests in short mode")
	}

	tags := os.Getenv("GODOG_TAGS")
	if tags == "" {
		tags = "~@wip"
	}

	suite := godog.TestSuite{
		ScenarioInitializer: initializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
			Tags:     tags,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("feature tests failed")
	}
}

// edgesContext holds state between steps of one scenario.
type edgesContext struct {
	ctx      context.Context
	executor *Executor
	result   []models.Document
	err      error
}

func initializeScenario(sc *godog.ScenarioContext) {
	tc := &edgesContext{ctx: context.Background()}

	sc.Step(`^the sample graph "bla3"$`, tc.sampleGraph)
	sc.Step(`^I call EDGES on "([^"]*)" from "([^"]*)" with direction "([^"]*)"$`, tc.callEdges)
	sc.Step(`^I call EDGES on "([^"]*)" from "([^"]*)" with direction "([^"]*)" restricted to "([^"]*)"$`, tc.callEdgesRestricted)
	sc.Step(`^I call EDGES on "([^"]*)" from "([^"]*)" with direction "([^"]*)" and example '([^']*)'$`, tc.callEdgesWithExample)
	sc.Step(`^the sorted edge labels are "([^"]*)"$`, tc.sortedLabelsAre)
	sc.Step(`^no edges are returned$`, tc.noEdges)
	sc.Step(`^the call fails with (graph not found|vertex not found|invalid direction)$`, tc.callFails)
}

func (tc *edgesContext) sampleGraph() error {
	s := memstore.New()
	if err := seedMixedGraph(tc.ctx, s); err != nil {
		return err
	}

	tc.executor = NewExecutor(s, s, testLogger(), 0)

	return nil
}

func (tc *edgesContext) run(req domain.EdgeRequest) error {
	tc.result, tc.err = tc.executor.FindEdges(tc.ctx, req)

	return nil
}

func (tc *edgesContext) callEdges(graph, vertex, direction string) error {
	return tc.run(domain.EdgeRequest{Graph: graph, Vertex: vertex, Direction: direction})
}

func (tc *edgesContext) callEdgesRestricted(graph, vertex, direction, collection string) error {
	restrictions, err := example.ParseRestrictions(collection)
	if err != nil {
		return err
	}

	return tc.run(domain.EdgeRequest{Graph: graph, Vertex: vertex, Direction: direction, Collections: restrictions})
}

func (tc *edgesContext) callEdgesWithExample(graph, vertex, direction, raw string) error {
	patterns, err := example.ParsePatternsJSON([]byte(raw))
	if err != nil {
		return err
	}

	return tc.run(domain.EdgeRequest{Graph: graph, Vertex: vertex, Direction: direction, Examples: patterns})
}

func (tc *edgesContext) sortedLabelsAre(list string) error {
	if tc.err != nil {
		return fmt.Errorf("unexpected error: %w", tc.err)
	}

	want := strings.Split(list, ", ")
	got := whats(tc.result)
	slices.Sort(got)

	if !slices.Equal(want, got) {
		return fmt.Errorf("expected %v, got %v", want, got)
	}

	return nil
}

func (tc *edgesContext) noEdges() error {
	if tc.err != nil {
		return fmt.Errorf("unexpected error: %w", tc.err)
	}

	if len(tc.result) != 0 {
		return fmt.Errorf("expected no edges, got %v", whats(tc.result))
	}

	return nil
}

func (tc *edgesContext) callFails(kind string) error {
	want := map[string]error{
		"graph not found":   models.ErrGraphNotFound,
		"vertex not found":  models.ErrVertexNotFound,
		"invalid direction": models.ErrInvalidDirection,
	}[kind]

	if !errors.Is(tc.err, want) {
		return fmt.Errorf("expected %v, got %v", want, tc.err)
	}

	if tc.result != nil {
		return fmt.Errorf("expected no result alongside error, got %d edges", len(tc.result))
	}

	return nil
}
