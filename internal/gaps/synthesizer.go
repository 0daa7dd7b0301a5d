// Package gaps finds knowledge silos: pairs of disconnected clusters that a
// new bridging document would connect.
//
// Cluster summaries are built locally and a single completion call asks the
// model which pairs are worth bridging. The model output is sanitized and
// parsed strictly; anything that does not parse is dropped.
package gaps

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/piyushh2304/NOTIONGPT-sub000/internal/completion"
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/graph"
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/logging"
)

const instrumentationName = "github.com/piyushh2304/NOTIONGPT-sub000/internal/gaps"

// Defaults for Config.
const (
	DefaultMaxTitles   = 5
	DefaultMaxKeywords = 5
	DefaultCallTimeout = 30 * time.Second
)

// Config tunes gap synthesis.
type Config struct {
	MaxTitles   int
	MaxKeywords int
	CallTimeout time.Duration
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.MaxTitles <= 0 {
		c.MaxTitles = DefaultMaxTitles
	}
	if c.MaxKeywords <= 0 {
		c.MaxKeywords = DefaultMaxKeywords
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = DefaultCallTimeout
	}
}

// Synthesizer proposes bridging documents between clusters.
type Synthesizer struct {
	client   completion.Client
	keywords *KeywordExtractor
	config   Config
	logger   *zap.Logger
}

// NewSynthesizer creates a gap synthesizer.
func NewSynthesizer(client completion.Client, cfg Config, logger *zap.Logger) (*Synthesizer, error) {
	if client == nil {
		return nil, fmt.Errorf("completion client cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.ApplyDefaults()

	return &Synthesizer{
		client:   client,
		keywords: NewKeywordExtractor(),
		config:   cfg,
		logger:   logger.Named("gaps"),
	}, nil
}

// Synthesize returns bridge suggestions for the given clusters. It never
// fails: fewer than two clusters, a completion error and unparseable output
// all yield an empty slice.
func (s *Synthesizer) Synthesize(ctx context.Context, clusters []graph.Cluster) []Suggestion {
	if len(clusters) < 2 {
		SynthesesTotal.WithLabelValues("skipped").Inc()
		return []Suggestion{}
	}

	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "gaps.synthesize")
	defer span.End()
	span.SetAttributes(attribute.Int("clusters", len(clusters)))

	summaries := Summarize(clusters, s.config.MaxTitles, s.config.MaxKeywords, s.keywords)
	prompt := BuildPrompt(summaries)

	callCtx, cancel := context.WithTimeout(ctx, s.config.CallTimeout)
	raw, err := s.client.Complete(callCtx, SystemPrompt, prompt)
	cancel()
	if err != nil {
		SynthesesTotal.WithLabelValues("completion_error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Warn("gap synthesis completion failed",
			append(logging.ContextFields(ctx),
				zap.Int("clusters", len(clusters)),
				zap.Error(graph.NewUpstreamError("complete", err)))...)
		return []Suggestion{}
	}

	logger := s.logger.With(logging.ContextFields(ctx)...)
	parsed := ParseSuggestions(raw, logger)
	suggestions := KnownClusters(parsed, clusterIDs(clusters))
	if dropped := len(parsed) - len(suggestions); dropped > 0 {
		logger.Debug("dropping suggestions for unknown clusters", zap.Int("dropped", dropped))
	}
	if len(suggestions) == 0 && Sanitize(raw) != "[]" {
		SynthesesTotal.WithLabelValues("malformed").Inc()
	} else {
		SynthesesTotal.WithLabelValues("success").Inc()
	}
	SuggestionsReturned.Observe(float64(len(suggestions)))

	span.SetAttributes(attribute.Int("suggestions", len(suggestions)))
	span.SetStatus(codes.Ok, "")
	return suggestions
}

func clusterIDs(clusters []graph.Cluster) map[int]struct{} {
	ids := make(map[int]struct{}, len(clusters))
	for _, c := range clusters {
		ids[c.ID] = struct{}{}
	}
	return ids
}
