// Command namedgraph-cli is a command-line client for the namedgraph server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/persistorai/namedgraph/client"
)

// Set via -ldflags at release time.
var (
	version   = "0.1.0"
	commit    = ""
	buildDate = ""
)

func versionString() string {
	if commit == "" || buildDate == "" {
		return fmt.Sprintf("namedgraph version %s-dev", version)
	}

	return fmt.Sprintf("namedgraph version %s (commit: %s, built: %s)", version, commit, buildDate)
}

// app carries the resolved connection settings and API client shared by
// every subcommand.
type app struct {
	flags   settings
	profile string
	format  string
	api     *client.Client
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "namedgraph",
		Short:         "namedgraph CLI: named graphs and incident edge queries",
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.connect()
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.URL, "url", "", "server URL (env: NAMEDGRAPH_URL, default "+defaultURL+")")
	pf.StringVar(&a.flags.APIKey, "api-key", "", "API key (env: NAMEDGRAPH_API_KEY)")
	pf.StringVar(&a.profile, "profile", "", "config profile (env: NAMEDGRAPH_PROFILE)")
	pf.StringVar(&a.format, "format", formatJSON, "output format: json|table|quiet")

	root.AddCommand(
		newGraphCmd(a),
		newEdgesCmd(a),
		newImportCmd(a),
		newHealthCmd(a),
	)

	return root
}

// connect resolves settings and builds the API client. It runs before every
// subcommand.
func (a *app) connect() error {
	if !validFormat(a.format) {
		return fmt.Errorf("unknown --format %q: want json, table or quiet", a.format)
	}

	s, err := resolveSettings(a.flags, a.profile, os.Getenv, defaultConfigPath())
	if err != nil {
		return err
	}

	var opts []client.Option
	if s.APIKey != "" {
		opts = append(opts, client.WithAPIKey(s.APIKey))
	}

	a.api = client.New(s.URL, opts...)

	return nil
}

func (a *app) out(cmd *cobra.Command) printer {
	return printer{w: cmd.OutOrStdout(), format: a.format}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
