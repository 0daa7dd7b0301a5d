package graph

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/piyushh2304/NOTIONGPT-sub000/internal/documents"
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/embeddings"
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/logging"
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/vectorstore"
)

const instrumentationName = "github.com/piyushh2304/NOTIONGPT-sub000/internal/graph"

// Defaults for Config.
const (
	DefaultRecentCap     = 30
	DefaultBatchSize     = 3
	DefaultEdgeThreshold = 0.7
	DefaultTopK          = 10
	DefaultMaxEmbedChars = 2000
	DefaultCallTimeout   = 5 * time.Second
)

// Config tunes graph construction.
type Config struct {
	// RecentCap bounds how many of the newest documents issue lookups.
	// Older documents can still be edge targets.
	RecentCap int

	// BatchSize is the number of lookups in flight at once.
	BatchSize int

	// EdgeThreshold is exclusive: a hit must score above it. Nil selects
	// DefaultEdgeThreshold; a pointer to 0 keeps every positive score.
	EdgeThreshold *float64

	TopK          int
	MaxEmbedChars int
	CallTimeout   time.Duration
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.RecentCap <= 0 {
		c.RecentCap = DefaultRecentCap
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.EdgeThreshold == nil {
		t := DefaultEdgeThreshold
		c.EdgeThreshold = &t
	}
	if c.TopK <= 0 {
		c.TopK = DefaultTopK
	}
	if c.MaxEmbedChars <= 0 {
		c.MaxEmbedChars = DefaultMaxEmbedChars
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = DefaultCallTimeout
	}
}

// Builder constructs graphs from the document store and similarity index.
type Builder struct {
	store    documents.Store
	embedder embeddings.Embedder
	index    vectorstore.Querier
	config   Config
	logger   *zap.Logger
}

// NewBuilder creates a graph builder.
func NewBuilder(store documents.Store, embedder embeddings.Embedder, index vectorstore.Querier, cfg Config, logger *zap.Logger) (*Builder, error) {
	if store == nil {
		return nil, fmt.Errorf("document store cannot be nil")
	}
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

	return &Builder{
		store:    store,
		embedder: embedder,
		index:    index,
		config:   cfg,
		logger:   logger.Named("graph"),
	}, nil
}

// Build returns the graph of every non-archived document in orgID.
//
// Lookups run for the RecentCap newest documents in batches of BatchSize;
// a batch finishes before the next starts. A failed lookup is logged and
// contributes no edges. Only a document store failure fails the build.
func (b *Builder) Build(ctx context.Context, orgID string) (_ *Graph, err error) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "graph.build")
	defer span.End()
	span.SetAttributes(attribute.String("org_id", orgID))

	start := time.Now()
	defer func() {
		BuildDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			BuildsTotal.WithLabelValues("error").Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return
		}
		BuildsTotal.WithLabelValues("success").Inc()
	}()

	docs, err := b.store.ListDocuments(ctx, orgID, true)
	if err != nil {
		return nil, NewUpstreamError("list_documents", err)
	}

	g := &Graph{
		Nodes: make([]Node, 0, len(docs)),
		Edges: []Edge{},
	}
	known := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		if _, dup := known[d.ID]; dup {
			continue
		}
		known[d.ID] = struct{}{}
		g.Nodes = append(g.Nodes, NodeFromDocument(d))
	}

	sources := recentDocuments(docs, b.config.RecentCap)
	edges := newEdgeSet()
	var failures int

	for lo := 0; lo < len(sources); lo += b.config.BatchSize {
		if ctx.Err() != nil {
			b.logger.Warn("graph build interrupted",
				append(logging.ContextFields(ctx),
					zap.String("org_id", orgID),
					zap.Int("processed", lo),
					zap.Error(ctx.Err()))...)
			break
		}
		hi := min(lo+b.config.BatchSize, len(sources))

		var (
			eg     errgroup.Group
			failMu sync.Mutex
		)
		for _, doc := range sources[lo:hi] {
			eg.Go(func() error {
				if !b.discover(ctx, orgID, doc, known, edges) {
					failMu.Lock()
					failures++
					failMu.Unlock()
				}
				return nil
			})
		}
		_ = eg.Wait()
	}

	g.Edges = edges.list()
	EdgesDiscovered.Observe(float64(len(g.Edges)))
	span.SetAttributes(
		attribute.Int("nodes", len(g.Nodes)),
		attribute.Int("edges", len(g.Edges)),
		attribute.Int("sources", len(sources)),
		attribute.Int("failures", failures),
	)
	span.SetStatus(codes.Ok, "")

	b.logger.Debug("graph built",
		append(logging.ContextFields(ctx),
			zap.String("org_id", orgID),
			zap.Int("nodes", len(g.Nodes)),
			zap.Int("edges", len(g.Edges)),
			zap.Int("failures", failures),
			zap.Duration("duration", time.Since(start)))...)
	return g, nil
}

// discover runs one lookup and registers its edges. It reports false when
// the lookup failed.
func (b *Builder) discover(ctx context.Context, orgID string, doc documents.Document, known map[string]struct{}, edges *edgeSet) bool {
	text := EmbedText(doc, b.config.MaxEmbedChars)

	embedCtx, cancel := context.WithTimeout(ctx, b.config.CallTimeout)
	vec, err := b.embedder.Embed(embedCtx, text)
	cancel()
	if err != nil {
		b.lookupFailed(ctx, "embed", doc.ID, err)
		return false
	}

	queryCtx, cancel := context.WithTimeout(ctx, b.config.CallTimeout)
	hits, err := b.index.Query(queryCtx, vec, b.config.TopK, vectorstore.Filter{
		OrgID:           orgID,
		ExcludeArchived: true,
	})
	cancel()
	if err != nil {
		b.lookupFailed(ctx, "query", doc.ID, err)
		return false
	}

	for _, h := range hits {
		if h.DocID == doc.ID || float64(h.Score) <= *b.config.EdgeThreshold {
			continue
		}
		if _, ok := known[h.DocID]; !ok {
			continue
		}
		edges.add(doc.ID, h.DocID, float64(h.Score))
	}
	return true
}

func (b *Builder) lookupFailed(ctx context.Context, stage, docID string, err error) {
	LookupFailuresTotal.WithLabelValues(stage).Inc()
	fields := append(logging.ContextFields(ctx),
		zap.String("stage", stage),
		zap.String("doc_id", docID),
		zap.Error(err),
	)
	if errors.Is(err, context.DeadlineExceeded) {
		b.logger.Warn("similarity lookup timed out", fields...)
		return
	}
	b.logger.Warn("similarity lookup failed", fields...)
}

// EmbedText is the text embedded for a document: the title, a newline and
// the content, cut to maxRunes.
func EmbedText(doc documents.Document, maxRunes int) string {
	return truncateRunes(doc.Title+"\n"+doc.Content, maxRunes)
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// recentDocuments returns the n newest documents. Equal timestamps keep
// their input order.
func recentDocuments(docs []documents.Document, n int) []documents.Document {
	sorted := make([]documents.Document, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

type pairKey struct{ a, b string }

func keyFor(x, y string) pairKey {
	if x > y {
		x, y = y, x
	}
	return pairKey{a: x, b: y}
}

// edgeSet registers undirected edges; the first score seen for a pair wins.
type edgeSet struct {
	mu    sync.Mutex
	seen  map[pairKey]struct{}
	edges []Edge
}

func newEdgeSet() *edgeSet {
	return &edgeSet{seen: make(map[pairKey]struct{})}
}

func (s *edgeSet) add(source, target string, weight float64) bool {
	if source == target {
		return false
	}
	k := keyFor(source, target)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[k]; ok {
		return false
	}
	s.seen[k] = struct{}{}
	s.edges = append(s.edges, Edge{Source: source, Target: target, Weight: weight})
	return true
}

func (s *edgeSet) list() []Edge {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Edge, len(s.edges))
	copy(out, s.edges)
	return out
}
