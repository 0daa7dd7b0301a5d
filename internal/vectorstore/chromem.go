package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/philippgille/chromem-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var chromemTracer = otel.Tracer("graphd.vectorstore.chromem")

// errNoEmbeddingFunc guards against chromem embedding content itself; vectors
// always arrive precomputed.
var errNoEmbeddingFunc = errors.New("chromem: embeddings must be supplied by the caller")

// ChromemConfig holds configuration for the embedded chromem-go database.
type ChromemConfig struct {
	// Path is the persistence directory. Empty keeps the index in memory.
	Path string
	// Compress enables gzip compression for persisted data.
	Compress   bool
	Collection string
	// VectorSize is the expected embedding dimension; 0 disables the check.
	VectorSize int
}

// ApplyDefaults sets default values for unset fields.
func (c *ChromemConfig) ApplyDefaults() {
	if c.Collection == "" {
		c.Collection = "graphd_documents"
	}
}

// Validate validates the configuration.
func (c *ChromemConfig) Validate() error {
	if c.VectorSize < 0 {
		return fmt.Errorf("%w: vector size must not be negative", ErrInvalidConfig)
	}
	return ValidateCollectionName(c.Collection)
}

// ChromemIndex implements Index using chromem-go.
//
// Metadata is stored as strings; the archived flag is "true" or "false" so
// that exact-match where filters can exclude archived documents.
type ChromemIndex struct {
	db         *chromem.DB
	collection *chromem.Collection
	config     ChromemConfig
	logger     *zap.Logger
}

var _ Index = (*ChromemIndex)(nil)

// NewChromemIndex opens (or creates) the collection described by config.
func NewChromemIndex(config ChromemConfig, logger *zap.Logger) (*ChromemIndex, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	var db *chromem.DB
	if config.Path == "" {
		db = chromem.NewDB()
	} else {
		path, err := expandPath(config.Path)
		if err != nil {
			return nil, fmt.Errorf("expanding path: %w", err)
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", path, err)
		}
		db, err = chromem.NewPersistentDB(path, config.Compress)
		if err != nil {
			return nil, fmt.Errorf("creating chromem DB: %w", err)
		}
		config.Path = path
	}

	collection, err := db.GetOrCreateCollection(config.Collection, nil, refuseEmbedding)
	if err != nil {
		return nil, fmt.Errorf("getting/creating collection %s: %w", config.Collection, err)
	}

	logger.Info("chromem index initialized",
		zap.String("path", config.Path),
		zap.Bool("compress", config.Compress),
		zap.String("collection", config.Collection),
		zap.Int("documents", collection.Count()),
	)

	return &ChromemIndex{db: db, collection: collection, config: config, logger: logger}, nil
}

func refuseEmbedding(context.Context, string) ([]float32, error) {
	return nil, errNoEmbeddingFunc
}

// expandPath expands ~ to home directory.
func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// Query implements Index.
func (s *ChromemIndex) Query(ctx context.Context, vector []float32, topK int, filter Filter) (_ []Hit, err error) {
	ctx, span := chromemTracer.Start(ctx, "ChromemIndex.Query")
	defer span.End()
	start := time.Now()
	defer func() { observe("chromem", "query", start, err) }()

	span.SetAttributes(
		attribute.String("collection", s.config.Collection),
		attribute.Int("top_k", topK),
		attribute.Bool("exclude_archived", filter.ExcludeArchived),
	)

	if err := filter.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if topK <= 0 {
		return nil, fmt.Errorf("top_k must be positive, got %d", topK)
	}
	if err := s.checkVector(vector); err != nil {
		return nil, err
	}

	// chromem requires nResults <= document count.
	count := s.collection.Count()
	if count == 0 {
		return []Hit{}, nil
	}
	if topK > count {
		topK = count
	}

	where := map[string]string{MetaOrgID: filter.OrgID}
	if filter.ExcludeArchived {
		where[MetaArchived] = "false"
	}

	results, err := s.collection.QueryEmbedding(ctx, normalize(vector), topK, where, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("querying collection %s: %w", s.config.Collection, err)
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		hits = append(hits, Hit{
			DocID: r.Metadata[MetaDocID],
			Title: r.Metadata[MetaTitle],
			Text:  r.Content,
			Score: r.Similarity,
		})
	}

	span.SetAttributes(attribute.Int("results_count", len(hits)))
	span.SetStatus(codes.Ok, "success")
	s.logger.Debug("queried chromem collection",
		zap.String("collection", s.config.Collection),
		zap.Int("top_k", topK),
		zap.Int("results", len(hits)),
	)
	return hits, nil
}

// Upsert implements Index.
func (s *ChromemIndex) Upsert(ctx context.Context, records []Record) (err error) {
	ctx, span := chromemTracer.Start(ctx, "ChromemIndex.Upsert")
	defer span.End()
	start := time.Now()
	defer func() { observe("chromem", "upsert", start, err) }()

	span.SetAttributes(attribute.Int("record_count", len(records)))

	if len(records) == 0 {
		return ErrEmptyRecords
	}

	docs := make([]chromem.Document, len(records))
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return err
		}
		if err := s.checkVector(r.Vector); err != nil {
			return fmt.Errorf("record %s: %w", r.DocID, err)
		}
		docs[i] = chromem.Document{
			ID: r.Key(),
			Metadata: map[string]string{
				MetaDocID:       r.DocID,
				MetaOrgID:       r.OrgID,
				MetaTitle:       r.Title,
				MetaArchived:    boolString(r.Archived),
				MetaContentHash: r.ContentHash,
			},
			Embedding: normalize(r.Vector),
			Content:   r.Text,
		}
	}

	if err := s.collection.AddDocuments(ctx, docs, 1); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("adding documents to %s: %w", s.config.Collection, err)
	}

	span.SetStatus(codes.Ok, "success")
	return nil
}

// Count returns the number of stored records.
func (s *ChromemIndex) Count() int {
	return s.collection.Count()
}

func (s *ChromemIndex) checkVector(v []float32) error {
	if len(v) == 0 {
		return fmt.Errorf("%w: empty vector", ErrInvalidVector)
	}
	if s.config.VectorSize > 0 && len(v) != s.config.VectorSize {
		return fmt.Errorf("%w: dimension %d, expected %d", ErrInvalidVector, len(v), s.config.VectorSize)
	}
	return nil
}

// Close is a no-op; chromem persists on every write.
func (s *ChromemIndex) Close() error {
	return nil
}
