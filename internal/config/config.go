// Package config provides configuration loading for graphd.
//
// Configuration is assembled from compiled-in defaults, an optional YAML file
// and GRAPHD_-prefixed environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the complete graphd configuration.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Logging     LoggingConfig     `koanf:"logging"`
	Telemetry   TelemetryConfig   `koanf:"telemetry"`
	Documents   DocumentsConfig   `koanf:"documents"`
	Embeddings  EmbeddingsConfig  `koanf:"embeddings"`
	VectorStore VectorStoreConfig `koanf:"vectorstore"`
	Completion  CompletionConfig  `koanf:"completion"`
	Graph       GraphConfig       `koanf:"graph"`
	Radar       RadarConfig       `koanf:"radar"`
	Gaps        GapsConfig        `koanf:"gaps"`
	Indexer     IndexerConfig     `koanf:"indexer"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"http_port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig selects level and encoding for the zap logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json or console
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	Enabled     bool    `koanf:"enabled"`
	ServiceName string  `koanf:"service_name"`
	Endpoint    string  `koanf:"endpoint"`
	Protocol    string  `koanf:"protocol"` // grpc or http
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// DocumentsConfig selects the document store backend.
type DocumentsConfig struct {
	Driver      string `koanf:"driver"` // memory, postgres, sqlite
	DSN         Secret `koanf:"dsn"`
	AutoMigrate bool   `koanf:"auto_migrate"`
}

// EmbeddingsConfig selects the embedding provider.
type EmbeddingsConfig struct {
	Provider  string        `koanf:"provider"` // tei, openai, fastembed
	BaseURL   string        `koanf:"base_url"`
	Model     string        `koanf:"model"`
	APIKey    Secret        `koanf:"api_key"`
	Dimension int           `koanf:"dimension"`
	CacheDir  string        `koanf:"cache_dir"`
	Timeout   time.Duration `koanf:"timeout"`
}

// VectorStoreConfig selects the similarity index backend.
type VectorStoreConfig struct {
	Provider        string `koanf:"provider"` // chromem or qdrant
	Collection      string `koanf:"collection"`
	VectorSize      int    `koanf:"vector_size"`
	ChromemPath     string `koanf:"chromem_path"`
	ChromemCompress bool   `koanf:"chromem_compress"`
	QdrantHost      string `koanf:"qdrant_host"`
	QdrantPort      int    `koanf:"qdrant_port"`
	QdrantAPIKey    Secret `koanf:"qdrant_api_key"`
	QdrantUseTLS    bool   `koanf:"qdrant_use_tls"`
}

// CompletionConfig selects the language model used for gap synthesis.
type CompletionConfig struct {
	Provider    string  `koanf:"provider"` // anthropic or openai
	Model       string  `koanf:"model"`
	APIKey      Secret  `koanf:"api_key"`
	BaseURL     string  `koanf:"base_url"`
	MaxTokens   int     `koanf:"max_tokens"`
	Temperature float64 `koanf:"temperature"`
	RateLimit   float64 `koanf:"rate_limit"` // requests per second
	Burst       int     `koanf:"burst"`
}

// GraphConfig tunes graph construction.
type GraphConfig struct {
	RecentCap     int           `koanf:"recent_cap"`
	BatchSize     int           `koanf:"batch_size"`
	EdgeThreshold float64       `koanf:"edge_threshold"`
	TopK          int           `koanf:"top_k"`
	MaxEmbedChars int           `koanf:"max_embed_chars"`
	CallTimeout   time.Duration `koanf:"call_timeout"`
}

// RadarConfig tunes the live suggestion radar.
type RadarConfig struct {
	MinTextLength int           `koanf:"min_text_length"`
	TopK          int           `koanf:"top_k"`
	MinScore      float64       `koanf:"min_score"`
	MaxResults    int           `koanf:"max_results"`
	SnippetLength int           `koanf:"snippet_length"`
	CallTimeout   time.Duration `koanf:"call_timeout"`
}

// GapsConfig tunes gap synthesis.
type GapsConfig struct {
	MaxTitles   int           `koanf:"max_titles"`
	MaxKeywords int           `koanf:"max_keywords"`
	CallTimeout time.Duration `koanf:"call_timeout"`
}

// IndexerConfig tunes the document indexer.
type IndexerConfig struct {
	BatchSize   int `koanf:"batch_size"`
	Concurrency int `koanf:"concurrency"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            9191,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			ServiceName: "graphd",
			Endpoint:    "localhost:4317",
			Protocol:    "grpc",
			Insecure:    true,
			SampleRate:  1.0,
		},
		Documents: DocumentsConfig{
			Driver:      "memory",
			AutoMigrate: true,
		},
		Embeddings: EmbeddingsConfig{
			Provider:  "tei",
			BaseURL:   "http://localhost:8080",
			Model:     "BAAI/bge-small-en-v1.5",
			Dimension: 384,
			Timeout:   30 * time.Second,
		},
		VectorStore: VectorStoreConfig{
			Provider:        "chromem",
			Collection:      "graphd_documents",
			VectorSize:      384,
			ChromemPath:     "./data/vectorstore",
			ChromemCompress: true,
			QdrantHost:      "localhost",
			QdrantPort:      6334,
		},
		Completion: CompletionConfig{
			Provider:    "anthropic",
			Model:       "claude-3-5-haiku-latest",
			MaxTokens:   1024,
			Temperature: 0.3,
			RateLimit:   1,
			Burst:       2,
		},
		Graph: GraphConfig{
			RecentCap:     30,
			BatchSize:     3,
			EdgeThreshold: 0.7,
			TopK:          10,
			MaxEmbedChars: 2000,
			CallTimeout:   5 * time.Second,
		},
		Radar: RadarConfig{
			MinTextLength: 50,
			TopK:          6,
			MinScore:      0.65,
			MaxResults:    3,
			SnippetLength: 150,
			CallTimeout:   5 * time.Second,
		},
		Gaps: GapsConfig{
			MaxTitles:   5,
			MaxKeywords: 5,
			CallTimeout: 30 * time.Second,
		},
		Indexer: IndexerConfig{
			BatchSize:   16,
			Concurrency: 4,
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid logging format %q (must be json or console)", c.Logging.Format)
	}

	if c.Telemetry.Enabled {
		if c.Telemetry.ServiceName == "" {
			return errors.New("telemetry service name required when telemetry is enabled")
		}
		if c.Telemetry.Protocol != "grpc" && c.Telemetry.Protocol != "http" {
			return fmt.Errorf("invalid telemetry protocol %q (must be grpc or http)", c.Telemetry.Protocol)
		}
	}

	switch c.Documents.Driver {
	case "memory":
	case "postgres", "sqlite":
		if !c.Documents.DSN.IsSet() {
			return fmt.Errorf("documents.dsn required for driver %q", c.Documents.Driver)
		}
	default:
		return fmt.Errorf("unsupported documents driver %q", c.Documents.Driver)
	}

	switch c.Embeddings.Provider {
	case "tei", "fastembed":
	case "openai":
		if !c.Embeddings.APIKey.IsSet() {
			return errors.New("embeddings.api_key required for openai provider")
		}
	default:
		return fmt.Errorf("unsupported embeddings provider %q", c.Embeddings.Provider)
	}

	switch c.VectorStore.Provider {
	case "chromem":
		if c.VectorStore.ChromemPath == "" {
			return errors.New("vectorstore.chromem_path required for chromem provider")
		}
	case "qdrant":
		if c.VectorStore.QdrantHost == "" {
			return errors.New("vectorstore.qdrant_host required for qdrant provider")
		}
		if c.VectorStore.QdrantPort < 1 || c.VectorStore.QdrantPort > 65535 {
			return fmt.Errorf("invalid qdrant port: %d", c.VectorStore.QdrantPort)
		}
	default:
		return fmt.Errorf("unsupported vectorstore provider %q", c.VectorStore.Provider)
	}
	if c.VectorStore.Collection == "" {
		return errors.New("vectorstore.collection required")
	}

	switch c.Completion.Provider {
	case "anthropic", "openai":
	default:
		return fmt.Errorf("unsupported completion provider %q", c.Completion.Provider)
	}
	if c.Completion.MaxTokens <= 0 {
		return errors.New("completion.max_tokens must be positive")
	}

	if c.Graph.RecentCap <= 0 {
		return errors.New("graph.recent_cap must be positive")
	}
	if c.Graph.BatchSize <= 0 {
		return errors.New("graph.batch_size must be positive")
	}
	if err := validateThreshold("graph.edge_threshold", c.Graph.EdgeThreshold); err != nil {
		return err
	}
	if c.Graph.TopK <= 0 {
		return errors.New("graph.top_k must be positive")
	}
	if c.Graph.CallTimeout <= 0 {
		return errors.New("graph.call_timeout must be positive")
	}

	if err := validateThreshold("radar.min_score", c.Radar.MinScore); err != nil {
		return err
	}
	if c.Radar.TopK <= 0 || c.Radar.MaxResults <= 0 {
		return errors.New("radar.top_k and radar.max_results must be positive")
	}

	if c.Indexer.BatchSize <= 0 || c.Indexer.Concurrency <= 0 {
		return errors.New("indexer.batch_size and indexer.concurrency must be positive")
	}

	return nil
}

func validateThreshold(name string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%s must be within [0,1], got %v", name, v)
	}
	return nil
}
