package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piyushh2304/NOTIONGPT-sub000/internal/gaps"
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/graph"
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/tenant"
)

// analyzeReport is printed by `graphd analyze`.
type analyzeReport struct {
	Nodes         int               `json:"nodes"`
	Edges         int               `json:"edges"`
	ClustersCount int               `json:"clustersCount"`
	Gaps          []gaps.Suggestion `json:"gaps,omitempty"`
}

func newAnalyzeCmd() *cobra.Command {
	var (
		orgID    string
		withGaps bool
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Print graph statistics and gap suggestions for an org",
		Long: `Build the org's graph and print node, edge and cluster counts.

With --gaps the clusters are also sent to the completion model and the
suggested bridging topics are included, as returned by
GET /graph/analyze-gaps.

Examples:
  graphd analyze --org acme
  graphd analyze --org acme --gaps`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := tenant.ValidateOrgID(orgID); err != nil {
				return err
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				report, err := analyze(ctx, a, orgID, withGaps)
				if err != nil {
					return err
				}
				return printJSON(cmd, report)
			})
		},
	}
	cmd.Flags().StringVar(&orgID, "org", "", "org scope to analyze (required)")
	cmd.Flags().BoolVar(&withGaps, "gaps", false, "ask the completion model for missing topics")
	_ = cmd.MarkFlagRequired("org")
	return cmd
}

func analyze(ctx context.Context, a *app, orgID string, withGaps bool) (*analyzeReport, error) {
	g, err := a.builder.Build(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("building graph: %w", err)
	}
	clusters := graph.FindClusters(g.Nodes, g.Edges)
	report := &analyzeReport{
		Nodes:         len(g.Nodes),
		Edges:         len(g.Edges),
		ClustersCount: len(clusters),
	}
	if withGaps {
		report.Gaps = a.synth.Synthesize(ctx, clusters)
	}
	return report, nil
}
