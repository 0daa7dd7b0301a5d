// Package indexer loads documents from the document store into the
// similarity index.
package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/piyushh2304/NOTIONGPT-sub000/internal/documents"
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/embeddings"
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/graph"
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/vectorstore"
)

const instrumentationName = "github.com/piyushh2304/NOTIONGPT-sub000/internal/indexer"

var documentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "graphd",
		Subsystem: "indexer",
		Name:      "documents_total",
		Help:      "Documents processed by the indexer by outcome",
	},
	[]string{"result"},
)

// Config tunes the indexer.
type Config struct {
	BatchSize     int
	Concurrency   int
	MaxEmbedChars int
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = 16
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.MaxEmbedChars <= 0 {
		c.MaxEmbedChars = graph.DefaultMaxEmbedChars
	}
}

// Stats summarizes one indexing run.
type Stats struct {
	Documents int           `json:"documents"`
	Indexed   int           `json:"indexed"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

// Indexer embeds documents and upserts them into the similarity index.
type Indexer struct {
	store    documents.Store
	embedder embeddings.Provider
	index    vectorstore.Index
	config   Config
	logger   *zap.Logger
}

// New creates an indexer.
func New(store documents.Store, embedder embeddings.Provider, index vectorstore.Index, cfg Config, logger *zap.Logger) (*Indexer, error) {
	if store == nil || embedder == nil || index == nil {
		return nil, fmt.Errorf("store, embedder and index are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.ApplyDefaults()
	return &Indexer{
		store:    store,
		embedder: embedder,
		index:    index,
		config:   cfg,
		logger:   logger.Named("indexer"),
	}, nil
}

// IndexOrg indexes every document of orgID, archived ones included so the
// index can filter them. A failed batch is logged and counted; only a
// document store failure aborts the run.
func (ix *Indexer) IndexOrg(ctx context.Context, orgID string) (Stats, error) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "indexer.index_org")
	defer span.End()
	span.SetAttributes(attribute.String("org_id", orgID))

	start := time.Now()
	docs, err := ix.store.ListDocuments(ctx, orgID, false)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Stats{}, graph.NewUpstreamError("list_documents", err)
	}

	var indexed, failed atomic.Int64
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(ix.config.Concurrency)

	for lo := 0; lo < len(docs); lo += ix.config.BatchSize {
		batch := docs[lo:min(lo+ix.config.BatchSize, len(docs))]
		eg.Go(func() error {
			if err := ix.indexBatch(egCtx, batch); err != nil {
				failed.Add(int64(len(batch)))
				documentsTotal.WithLabelValues("failed").Add(float64(len(batch)))
				ix.logger.Warn("index batch failed",
					zap.String("org_id", orgID),
					zap.String("first_doc_id", batch[0].ID),
					zap.Int("batch_size", len(batch)),
					zap.Error(err))
				return nil
			}
			indexed.Add(int64(len(batch)))
			documentsTotal.WithLabelValues("indexed").Add(float64(len(batch)))
			return nil
		})
	}
	_ = eg.Wait()

	stats := Stats{
		Documents: len(docs),
		Indexed:   int(indexed.Load()),
		Failed:    int(failed.Load()),
		Duration:  time.Since(start),
	}
	span.SetAttributes(
		attribute.Int("documents", stats.Documents),
		attribute.Int("indexed", stats.Indexed),
		attribute.Int("failed", stats.Failed),
	)
	span.SetStatus(codes.Ok, "")
	ix.logger.Info("indexed org",
		zap.String("org_id", orgID),
		zap.Int("documents", stats.Documents),
		zap.Int("indexed", stats.Indexed),
		zap.Int("failed", stats.Failed),
		zap.Duration("duration", stats.Duration))
	return stats, nil
}

func (ix *Indexer) indexBatch(ctx context.Context, batch []documents.Document) error {
	texts := make([]string, len(batch))
	for i, d := range batch {
		texts[i] = graph.EmbedText(d, ix.config.MaxEmbedChars)
	}

	vectors, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding batch: %w", err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("embedding batch: got %d vectors for %d documents", len(vectors), len(batch))
	}

	records := make([]vectorstore.Record, len(batch))
	for i, d := range batch {
		records[i] = vectorstore.Record{
			DocID:       d.ID,
			OrgID:       d.OrgID,
			Title:       d.Title,
			Text:        d.Content,
			Archived:    d.Archived,
			ContentHash: ContentHash(d),
			Vector:      vectors[i],
		}
	}
	if err := ix.index.Upsert(ctx, records); err != nil {
		return fmt.Errorf("upserting batch: %w", err)
	}
	return nil
}

// ContentHash identifies the embedded text of a document.
func ContentHash(d documents.Document) string {
	sum := sha256.Sum256([]byte(d.Title + "\n" + d.Content))
	return hex.EncodeToString(sum[:])
}
