package gaps

import (
	"context"
	"fmt"

	"github.com/piyushh2304/NOTIONGPT-sub000/internal/graph"
)

// GraphBuilder builds the graph of an org scope.
type GraphBuilder interface {
	Build(ctx context.Context, orgID string) (*graph.Graph, error)
}

// Analysis is the result of a gap analysis run.
type Analysis struct {
	ClustersCount int          `json:"clustersCount"`
	Gaps          []Suggestion `json:"gaps"`
}

// Analyzer runs the full pipeline: build, cluster, synthesize.
type Analyzer struct {
	builder     GraphBuilder
	synthesizer *Synthesizer
}

// NewAnalyzer creates an analyzer.
func NewAnalyzer(builder GraphBuilder, synthesizer *Synthesizer) (*Analyzer, error) {
	if builder == nil {
		return nil, fmt.Errorf("graph builder cannot be nil")
	}
	if synthesizer == nil {
		return nil, fmt.Errorf("synthesizer cannot be nil")
	}
	return &Analyzer{builder: builder, synthesizer: synthesizer}, nil
}

// Analyze returns the cluster count and bridge suggestions for orgID. Only
// a graph build failure is returned as an error.
func (a *Analyzer) Analyze(ctx context.Context, orgID string) (*Analysis, error) {
	g, err := a.builder.Build(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("building graph: %w", err)
	}
	clusters := graph.FindClusters(g.Nodes, g.Edges)
	return &Analysis{
		ClustersCount: len(clusters),
		Gaps:          a.synthesizer.Synthesize(ctx, clusters),
	}, nil
}
