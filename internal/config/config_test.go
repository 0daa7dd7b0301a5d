package config

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, 30, cfg.Graph.RecentCap)
	assert.Equal(t, 3, cfg.Graph.BatchSize)
	assert.Equal(t, 0.7, cfg.Graph.EdgeThreshold)
	assert.Equal(t, 50, cfg.Radar.MinTextLength)
	assert.Equal(t, 6, cfg.Radar.TopK)
	assert.Equal(t, 0.65, cfg.Radar.MinScore)
	assert.Equal(t, 3, cfg.Radar.MaxResults)
	assert.Equal(t, 150, cfg.Radar.SnippetLength)
	assert.Equal(t, 5, cfg.Gaps.MaxTitles)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid server port",
		},
		{
			name:    "zero shutdown timeout",
			mutate:  func(c *Config) { c.Server.ShutdownTimeout = 0 },
			wantErr: "shutdown timeout",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "invalid logging format",
		},
		{
			name:    "postgres without dsn",
			mutate:  func(c *Config) { c.Documents.Driver = "postgres" },
			wantErr: "documents.dsn required",
		},
		{
			name: "postgres with dsn",
			mutate: func(c *Config) {
				c.Documents.Driver = "postgres"
				c.Documents.DSN = "postgres://localhost/graphd"
			},
		},
		{
			name:    "unknown document driver",
			mutate:  func(c *Config) { c.Documents.Driver = "mongo" },
			wantErr: "unsupported documents driver",
		},
		{
			name:    "openai embeddings without key",
			mutate:  func(c *Config) { c.Embeddings.Provider = "openai" },
			wantErr: "embeddings.api_key required",
		},
		{
			name:    "unknown vectorstore",
			mutate:  func(c *Config) { c.VectorStore.Provider = "faiss" },
			wantErr: "unsupported vectorstore provider",
		},
		{
			name:    "qdrant without host",
			mutate:  func(c *Config) { c.VectorStore.Provider = "qdrant"; c.VectorStore.QdrantHost = "" },
			wantErr: "qdrant_host required",
		},
		{
			name:    "unknown completion provider",
			mutate:  func(c *Config) { c.Completion.Provider = "cohere" },
			wantErr: "unsupported completion provider",
		},
		{
			name:    "edge threshold above one",
			mutate:  func(c *Config) { c.Graph.EdgeThreshold = 1.5 },
			wantErr: "graph.edge_threshold",
		},
		{
			name:    "zero batch size",
			mutate:  func(c *Config) { c.Graph.BatchSize = 0 },
			wantErr: "graph.batch_size",
		},
		{
			name:    "negative radar score",
			mutate:  func(c *Config) { c.Radar.MinScore = -0.1 },
			wantErr: "radar.min_score",
		},
		{
			name:    "telemetry with bad protocol",
			mutate:  func(c *Config) { c.Telemetry.Enabled = true; c.Telemetry.Protocol = "udp" },
			wantErr: "invalid telemetry protocol",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSecret_Redaction(t *testing.T) {
	s := Secret("sk-live-123")

	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))
	assert.Equal(t, "Secret([REDACTED])", fmt.Sprintf("%#v", s))
	assert.Equal(t, "sk-live-123", s.Value())
	assert.True(t, s.IsSet())

	data, err := json.Marshal(struct {
		Key Secret `json:"key"`
	}{Key: s})
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"[REDACTED]"}`, string(data))

	var empty Secret
	assert.Equal(t, "", empty.String())
	assert.False(t, empty.IsSet())
}

func TestConfig_DurationsArePositive(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 5*time.Second, cfg.Graph.CallTimeout)
	assert.Equal(t, 5*time.Second, cfg.Radar.CallTimeout)
	assert.Equal(t, 30*time.Second, cfg.Gaps.CallTimeout)
}
