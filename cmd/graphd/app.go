package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/piyushh2304/NOTIONGPT-sub000/internal/completion"
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/config"
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/documents"
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/embeddings"
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/gaps"
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/graph"
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/indexer"
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/logging"
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/radar"
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/telemetry"
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/vectorstore"
)

// app holds every initialized dependency of a graphd process.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	tel    *telemetry.Telemetry

	store    documents.Store
	embedder embeddings.Provider
	index    vectorstore.Index

	builder  *graph.Builder
	radar    *radar.Radar
	synth    *gaps.Synthesizer
	analyzer *gaps.Analyzer
	indexer  *indexer.Indexer
}

// loadConfig reads the configuration named by --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger from the logging section.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	lc := logging.NewDefaultConfig()
	lc.Level = cfg.Logging.Level
	lc.Format = cfg.Logging.Format
	lc.Fields = map[string]string{"service": cfg.Telemetry.ServiceName}
	if err := lc.Validate(); err != nil {
		return nil, err
	}
	return logging.New(lc)
}

// newApp initializes dependencies in order:
//  1. Telemetry
//  2. Document store
//  3. Embedding provider and similarity index
//  4. Completion client
//  5. Graph builder, radar, gap analyzer and indexer
//
// On error everything already opened is closed.
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.Close(context.Background())
		}
	}()

	a.tel, err = telemetry.New(ctx, telemetry.FromConfig(cfg.Telemetry, version), logger)
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}

	a.store, err = documents.Open(cfg.Documents.Driver, cfg.Documents.DSN.Value(), cfg.Documents.AutoMigrate, logger.Named("documents"))
	if err != nil {
		return nil, fmt.Errorf("opening document store: %w", err)
	}

	a.embedder, err = embeddings.NewProvider(embeddings.ProviderConfig{
		Provider:  cfg.Embeddings.Provider,
		Model:     cfg.Embeddings.Model,
		BaseURL:   cfg.Embeddings.BaseURL,
		APIKey:    cfg.Embeddings.APIKey.Value(),
		Dimension: cfg.Embeddings.Dimension,
		CacheDir:  cfg.Embeddings.CacheDir,
		Timeout:   cfg.Embeddings.Timeout,
	}, logger.Named("embeddings"))
	if err != nil {
		return nil, fmt.Errorf("creating embedding provider: %w", err)
	}

	a.index, err = vectorstore.NewIndex(ctx, vectorstore.Config{
		Provider: cfg.VectorStore.Provider,
		Chromem: vectorstore.ChromemConfig{
			Path:       cfg.VectorStore.ChromemPath,
			Compress:   cfg.VectorStore.ChromemCompress,
			Collection: cfg.VectorStore.Collection,
			VectorSize: cfg.VectorStore.VectorSize,
		},
		Qdrant: vectorstore.QdrantConfig{
			Host:       cfg.VectorStore.QdrantHost,
			Port:       cfg.VectorStore.QdrantPort,
			APIKey:     cfg.VectorStore.QdrantAPIKey.Value(),
			UseTLS:     cfg.VectorStore.QdrantUseTLS,
			Collection: cfg.VectorStore.Collection,
			VectorSize: uint64(cfg.VectorStore.VectorSize),
		},
	}, logger.Named("vectorstore"))
	if err != nil {
		return nil, fmt.Errorf("opening similarity index: %w", err)
	}

	llm, err := completion.NewClient(completion.Config{
		Provider:    cfg.Completion.Provider,
		Model:       cfg.Completion.Model,
		APIKey:      cfg.Completion.APIKey.Value(),
		BaseURL:     cfg.Completion.BaseURL,
		MaxTokens:   cfg.Completion.MaxTokens,
		Temperature: cfg.Completion.Temperature,
		RateLimit:   cfg.Completion.RateLimit,
		Burst:       cfg.Completion.Burst,
	}, logger.Named("completion"))
	if err != nil {
		return nil, fmt.Errorf("creating completion client: %w", err)
	}

	a.builder, err = graph.NewBuilder(a.store, a.embedder, a.index, graph.Config{
		RecentCap:     cfg.Graph.RecentCap,
		BatchSize:     cfg.Graph.BatchSize,
		EdgeThreshold: &cfg.Graph.EdgeThreshold,
		TopK:          cfg.Graph.TopK,
		MaxEmbedChars: cfg.Graph.MaxEmbedChars,
		CallTimeout:   cfg.Graph.CallTimeout,
	}, logger.Named("graph"))
	if err != nil {
		return nil, fmt.Errorf("creating graph builder: %w", err)
	}

	a.radar, err = radar.New(a.embedder, a.index, radar.Config{
		MinTextLength: cfg.Radar.MinTextLength,
		TopK:          cfg.Radar.TopK,
		MinScore:      &cfg.Radar.MinScore,
		MaxResults:    cfg.Radar.MaxResults,
		SnippetLength: cfg.Radar.SnippetLength,
		CallTimeout:   cfg.Radar.CallTimeout,
	}, logger.Named("radar"))
	if err != nil {
		return nil, fmt.Errorf("creating radar: %w", err)
	}

	a.synth, err = gaps.NewSynthesizer(llm, gaps.Config{
		MaxTitles:   cfg.Gaps.MaxTitles,
		MaxKeywords: cfg.Gaps.MaxKeywords,
		CallTimeout: cfg.Gaps.CallTimeout,
	}, logger.Named("gaps"))
	if err != nil {
		return nil, fmt.Errorf("creating gap synthesizer: %w", err)
	}
	a.analyzer, err = gaps.NewAnalyzer(a.builder, a.synth)
	if err != nil {
		return nil, fmt.Errorf("creating gap analyzer: %w", err)
	}

	a.indexer, err = indexer.New(a.store, a.embedder, a.index, indexer.Config{
		BatchSize:     cfg.Indexer.BatchSize,
		Concurrency:   cfg.Indexer.Concurrency,
		MaxEmbedChars: cfg.Graph.MaxEmbedChars,
	}, logger.Named("indexer"))
	if err != nil {
		return nil, fmt.Errorf("creating indexer: %w", err)
	}

	return a, nil
}

// Close releases dependencies in reverse order of creation.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	if a.index != nil {
		errs = append(errs, a.index.Close())
	}
	if a.embedder != nil {
		errs = append(errs, a.embedder.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.tel != nil {
		errs = append(errs, a.tel.Shutdown(ctx))
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("closing dependencies", zap.Error(err))
		return err
	}
	return nil
}

// withApp loads configuration, builds the app, runs fn and tears down.
func withApp(ctx context.Context, fn func(context.Context, *app) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() {
		_ = logging.Sync(logger)
	}()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		_ = a.Close(shutdownCtx)
	}()

	return fn(ctx, a)
}
