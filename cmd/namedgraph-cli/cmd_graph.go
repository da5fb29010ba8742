package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/persistorai/namedgraph/client"
)

func newGraphCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Manage named graph definitions",
	}

	cmd.AddCommand(
		graphCreateCmd(a),
		graphGetCmd(a),
		graphListCmd(a),
		graphDropCmd(a),
	)

	return cmd
}

// parseRelation reads "collection:from1,from2->to1,to2" as a directed
// relation and "collection:v1,v2" as an undirected one.
func parseRelation(s string) (client.EdgeDefinition, error) {
	coll, rest, ok := strings.Cut(s, ":")
	if !ok || coll == "" || rest == "" {
		return client.EdgeDefinition{}, fmt.Errorf("relation %q: want collection:from->to or collection:vertices", s)
	}

	from, to, directed := strings.Cut(rest, "->")
	if !directed {
		vertices := strings.Split(rest, ",")
		return client.EdgeDefinition{Collection: coll, From: vertices, To: vertices}, nil
	}

	if from == "" || to == "" {
		return client.EdgeDefinition{}, fmt.Errorf("relation %q: empty side", s)
	}

	return client.EdgeDefinition{
		Collection: coll,
		From:       strings.Split(from, ","),
		To:         strings.Split(to, ","),
		Directed:   true,
	}, nil
}

// buildCreateRequest merges --definitions JSON with repeated --relation flags.
func buildCreateRequest(name, defsJSON string, relations []string) (client.CreateGraphRequest, error) {
	req := client.CreateGraphRequest{Name: name}

	if defsJSON != "" {
		if err := json.Unmarshal([]byte(defsJSON), &req.EdgeDefinitions); err != nil {
			return req, fmt.Errorf("parse --definitions: %w", err)
		}
	}

	for _, r := range relations {
		def, err := parseRelation(r)
		if err != nil {
			return req, err
		}
		req.EdgeDefinitions = append(req.EdgeDefinitions, def)
	}

	if len(req.EdgeDefinitions) == 0 {
		return req, fmt.Errorf("at least one --relation or --definitions is required")
	}

	return req, nil
}

func graphCreateCmd(a *app) *cobra.Command {
	var (
		relations []string
		defsJSON  string
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a named graph",
		Example: `  namedgraph graph create social --relation 'knows:people->people'
  namedgraph graph create roads --relation 'road:city'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildCreateRequest(args[0], defsJSON, relations)
			if err != nil {
				return err
			}

			g, err := a.api.Graphs.Create(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("create graph: %w", err)
			}

			return a.out(cmd).print(graphTable{*g}, g.Name)
		},
	}

	cmd.Flags().StringArrayVar(&relations, "relation", nil, "relation as collection:from->to or collection:vertices (repeatable)")
	cmd.Flags().StringVar(&defsJSON, "definitions", "", "edge definitions as a JSON array")

	return cmd
}

func graphGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Show a named graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.api.Graphs.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get graph: %w", err)
			}

			return a.out(cmd).print(graphTable{*g}, g.Name)
		},
	}
}

func graphListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List named graphs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			graphs, err := a.api.Graphs.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list graphs: %w", err)
			}

			t := graphTable(graphs)

			return a.out(cmd).print(t, t.names())
		},
	}
}

func graphDropCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "drop <name>",
		Short: "Drop a named graph definition (collections are kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.api.Graphs.Drop(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("drop graph: %w", err)
			}

			return a.out(cmd).print(map[string]bool{"dropped": true}, args[0])
		},
	}
}
