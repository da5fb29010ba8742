package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/persistorai/namedgraph/client"
)

func newEdgesCmd(a *app) *cobra.Command {
	var (
		direction   string
		exampleJSON string
		collections []string
	)

	cmd := &cobra.Command{
		Use:   "edges <graph> <vertex>",
		Short: "List edges of a named graph incident to a vertex",
		Example: `  namedgraph edges social people/alice --direction outbound
  namedgraph edges social people/alice --example '{"since":2020}' --collection knows`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := client.FindEdgesRequest{Vertex: args[1], Direction: direction}

			if exampleJSON != "" {
				if err := json.Unmarshal([]byte(exampleJSON), &req.Examples); err != nil {
					return fmt.Errorf("parse --example: %w", err)
				}
			}

			if len(collections) > 0 {
				req.Collections = collections
			}

			edges, err := a.api.Edges.Find(cmd.Context(), args[0], req)
			if err != nil {
				return fmt.Errorf("edges: %w", err)
			}

			t := edgeTable(edges)

			return a.out(cmd).print(t, t.ids())
		},
	}

	cmd.Flags().StringVar(&direction, "direction", "any", "direction: any|inbound|outbound")
	cmd.Flags().StringVar(&exampleJSON, "example", "", "example filter as JSON (object, list or id string)")
	cmd.Flags().StringSliceVar(&collections, "collection", nil, "restrict to these edge collections")

	return cmd
}
