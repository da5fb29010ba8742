package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/persistorai/namedgraph/client"
)

// importBatchSize matches the server's per-request document limit.
const importBatchSize = 1000

// readDocuments decodes a JSON array of documents from r.
func readDocuments(r io.Reader) ([]client.Document, error) {
	var docs []client.Document
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decoding documents: %w", err)
	}

	return docs, nil
}

// openInput opens path for reading, with "-" meaning stdin.
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	return f, nil
}

// batches splits docs into chunks of at most size.
func batches(docs []client.Document, size int) [][]client.Document {
	var out [][]client.Document
	for len(docs) > size {
		out = append(out, docs[:size])
		docs = docs[size:]
	}

	if len(docs) > 0 {
		out = append(out, docs)
	}

	return out
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <collection> <file>",
		Short: "Bulk-load a JSON array of documents into a collection",
		Long: `Load vertex or edge documents into a collection. Each document needs
a _key; edge documents also carry _from and _to. Existing documents with
the same _key are replaced. Use - to read from stdin.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			collection := args[0]

			in, err := openInput(cmd, args[1])
			if err != nil {
				return err
			}
			defer in.Close()

			docs, err := readDocuments(in)
			if err != nil {
				return err
			}

			total := 0
			for i, batch := range batches(docs, importBatchSize) {
				res, err := a.api.Documents.Import(cmd.Context(), collection, batch)
				if err != nil {
					return fmt.Errorf("import batch %d (%d documents loaded before it): %w", i+1, total, err)
				}
				total += res.Imported
			}

			result := client.ImportResult{Collection: collection, Imported: total}

			return a.out(cmd).print(result, strconv.Itoa(total))
		},
	}
}

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show server health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := a.api.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("health: %w", err)
			}

			return a.out(cmd).print(h, h.Status)
		},
	}
}
