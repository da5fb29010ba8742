package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/persistorai/namedgraph/client"
)

const (
	formatJSON  = "json"
	formatTable = "table"
	formatQuiet = "quiet"
)

func validFormat(f string) bool {
	return f == formatJSON || f == formatTable || f == formatQuiet
}

// tabular values render themselves as rows under a header.
type tabular interface {
	header() []string
	rows() [][]string
}

// printer renders command results in the selected --format. Values that are
// not tabular fall back to JSON in table mode.
type printer struct {
	w      io.Writer
	format string
}

func (p printer) print(v any, quiet string) error {
	switch p.format {
	case formatQuiet:
		if quiet == "" {
			return nil
		}
		_, err := fmt.Fprintln(p.w, quiet)
		return err
	case formatTable:
		if t, ok := v.(tabular); ok {
			return p.table(t)
		}
	}

	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func (p printer) table(t tabular) error {
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(t.header(), "\t"))
	for _, row := range t.rows() {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	return tw.Flush()
}

type graphTable []client.Graph

func (graphTable) header() []string { return []string{"NAME", "RELATIONS", "CREATED"} }

func (g graphTable) rows() [][]string {
	out := make([][]string, 0, len(g))
	for _, gr := range g {
		rels := make([]string, 0, len(gr.EdgeDefinitions))
		for _, d := range gr.EdgeDefinitions {
			rels = append(rels, relationString(d))
		}

		created := ""
		if !gr.CreatedAt.IsZero() {
			created = gr.CreatedAt.Format("2006-01-02 15:04:05")
		}

		out = append(out, []string{gr.Name, strings.Join(rels, " "), created})
	}

	return out
}

func (g graphTable) names() string {
	names := make([]string, 0, len(g))
	for _, gr := range g {
		names = append(names, gr.Name)
	}

	return strings.Join(names, "\n")
}

type edgeTable []client.Document

func (edgeTable) header() []string { return []string{"ID", "FROM", "TO"} }

func (e edgeTable) rows() [][]string {
	out := make([][]string, 0, len(e))
	for _, d := range e {
		out = append(out, []string{d.ID(), d.From(), d.To()})
	}

	return out
}

func (e edgeTable) ids() string {
	ids := make([]string, 0, len(e))
	for _, d := range e {
		ids = append(ids, d.ID())
	}

	return strings.Join(ids, "\n")
}

// relationString is the inverse of parseRelation.
func relationString(d client.EdgeDefinition) string {
	if !d.Directed {
		return d.Collection + ":" + strings.Join(d.From, ",")
	}

	return d.Collection + ":" + strings.Join(d.From, ",") + "->" + strings.Join(d.To, ",")
}
