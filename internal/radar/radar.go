// Package radar suggests existing documents related to text being written.
package radar

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/piyushh2304/NOTIONGPT-sub000/internal/embeddings"
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/graph"
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/logging"
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/vectorstore"
)

const instrumentationName = "github.com/piyushh2304/NOTIONGPT-sub000/internal/radar"

// Defaults for Config.
const (
	DefaultMinTextLength = 50
	DefaultTopK          = 6
	DefaultMinScore      = 0.65
	DefaultMaxResults    = 3
	DefaultSnippetLength = 150
	DefaultCallTimeout   = 5 * time.Second
)

var lookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "graphd",
		Subsystem: "radar",
		Name:      "lookups_total",
		Help:      "Total number of radar lookups by outcome",
	},
	[]string{"result"},
)

// Config tunes the radar.
type Config struct {
	// MinTextLength is the shortest text, in runes, worth a lookup.
	MinTextLength int
	TopK          int
	// MinScore is exclusive: a hit must score above it. Nil selects
	// DefaultMinScore.
	MinScore      *float64
	MaxResults    int
	SnippetLength int
	CallTimeout   time.Duration
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.MinTextLength <= 0 {
		c.MinTextLength = DefaultMinTextLength
	}
	if c.TopK <= 0 {
		c.TopK = DefaultTopK
	}
	if c.MinScore == nil {
		s := DefaultMinScore
		c.MinScore = &s
	}
	if c.MaxResults <= 0 {
		c.MaxResults = DefaultMaxResults
	}
	if c.SnippetLength <= 0 {
		c.SnippetLength = DefaultSnippetLength
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = DefaultCallTimeout
	}
}

// Suggestion is a related document.
type Suggestion struct {
	ID      string
	Title   string
	Score   float32
	Snippet string
}

// Radar looks up documents similar to a draft.
type Radar struct {
	embedder embeddings.Embedder
	index    vectorstore.Querier
	config   Config
	logger   *zap.Logger
}

// New creates a radar.
func New(embedder embeddings.Embedder, index vectorstore.Querier, cfg Config, logger *zap.Logger) (*Radar, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder cannot be nil")
	}
	if index == nil {
		return nil, fmt.Errorf("similarity index cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.ApplyDefaults()
	return &Radar{
		embedder: embedder,
		index:    index,
		config:   cfg,
		logger:   logger.Named("radar"),
	}, nil
}

// Suggest returns up to MaxResults documents of orgID similar to text,
// excluding currentDocID, in the index's ranking order. Short texts return
// no suggestions without any lookup. Embed and query failures are returned
// as *graph.UpstreamError.
func (r *Radar) Suggest(ctx context.Context, orgID, text, currentDocID string) (_ []Suggestion, err error) {
	if utf8.RuneCountInString(text) < r.config.MinTextLength {
		lookupsTotal.WithLabelValues("skipped").Inc()
		return []Suggestion{}, nil
	}

	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "radar.suggest")
	defer span.End()
	span.SetAttributes(
		attribute.String("org_id", orgID),
		attribute.Int("text_length", len(text)),
	)
	defer func() {
		if err != nil {
			lookupsTotal.WithLabelValues("error").Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			r.logger.Warn("radar lookup failed", append(logging.ContextFields(ctx), zap.Error(err))...)
			return
		}
		lookupsTotal.WithLabelValues("success").Inc()
		span.SetStatus(codes.Ok, "")
	}()

	embedCtx, cancel := context.WithTimeout(ctx, r.config.CallTimeout)
	vec, err := r.embedder.Embed(embedCtx, text)
	cancel()
	if err != nil {
		return nil, graph.NewUpstreamError("embed", err)
	}

	queryCtx, cancel := context.WithTimeout(ctx, r.config.CallTimeout)
	hits, err := r.index.Query(queryCtx, vec, r.config.TopK, vectorstore.Filter{
		OrgID:           orgID,
		ExcludeArchived: true,
	})
	cancel()
	if err != nil {
		return nil, graph.NewUpstreamError("query", err)
	}

	out := make([]Suggestion, 0, r.config.MaxResults)
	for _, h := range hits {
		if len(out) == r.config.MaxResults {
			break
		}
		if h.DocID == currentDocID || float64(h.Score) <= *r.config.MinScore {
			continue
		}
		out = append(out, Suggestion{
			ID:      h.DocID,
			Title:   h.Title,
			Score:   h.Score,
			Snippet: Snippet(h.Text, r.config.SnippetLength),
		})
	}
	span.SetAttributes(attribute.Int("suggestions", len(out)))
	return out, nil
}

// Snippet returns the first n runes of text followed by "...".
func Snippet(text string, n int) string {
	count := 0
	for i := range text {
		if count == n {
			return text[:i] + "..."
		}
		count++
	}
	return text + "..."
}
