// Graphd serves the knowledge graph, related-document radar and gap analysis
// for an organization's documents.
//
// Usage:
//
//	# Start the HTTP server
//	graphd serve --config graphd.yaml
//
//	# Embed and index every document of an org
//	graphd index --org acme
//
//	# Print gap suggestions for an org
//	graphd analyze --org acme
//
// Every setting can be overridden through GRAPHD_-prefixed environment
// variables, for example GRAPHD_SERVER_HTTP_PORT=9090.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// configPath is the --config flag shared by every subcommand.
var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "graphd",
		Short: "Knowledge graph service for workspace documents",
		Long: `graphd links an organization's documents by semantic similarity.

It serves the document graph, suggests related documents while a draft is
being written and asks a language model which topics are missing between
clusters of documents.`,
		Version:       version,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (default $GRAPHD_CONFIG)")
	root.SetVersionTemplate(fmt.Sprintf("graphd %s (commit %s, built %s)\n", version, gitCommit, buildDate))

	root.AddCommand(newServeCmd())
	root.AddCommand(newIndexCmd())
	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "graphd\n")
			fmt.Fprintf(out, "Version:    %s\n", version)
			fmt.Fprintf(out, "Commit:     %s\n", gitCommit)
			fmt.Fprintf(out, "Build Date: %s\n", buildDate)
		},
	}
}
