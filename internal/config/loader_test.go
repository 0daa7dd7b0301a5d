package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graphd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv(EnvConfigPath, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  http_port: 8088
  shutdown_timeout: 3s
graph:
  recent_cap: 50
  edge_threshold: 0.75
  call_timeout: 2s
vectorstore:
  provider: qdrant
  qdrant_host: qdrant.internal
  qdrant_port: 6334
completion:
  provider: openai
  model: gpt-4o-mini
  api_key: sk-test
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 50, cfg.Graph.RecentCap)
	assert.Equal(t, 0.75, cfg.Graph.EdgeThreshold)
	assert.Equal(t, 2*time.Second, cfg.Graph.CallTimeout)
	assert.Equal(t, "qdrant", cfg.VectorStore.Provider)
	assert.Equal(t, "qdrant.internal", cfg.VectorStore.QdrantHost)
	assert.Equal(t, "openai", cfg.Completion.Provider)
	assert.Equal(t, "sk-test", cfg.Completion.APIKey.Value())

	// Untouched sections keep their defaults.
	assert.Equal(t, 3, cfg.Graph.BatchSize)
	assert.Equal(t, 0.65, cfg.Radar.MinScore)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
graph:
  recent_cap: 50
`)
	t.Setenv("GRAPHD_GRAPH_RECENT_CAP", "12")
	t.Setenv("GRAPHD_RADAR_MIN_SCORE", "0.8")
	t.Setenv("GRAPHD_SERVER_HTTP_PORT", "7000")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Graph.RecentCap)
	assert.Equal(t, 0.8, cfg.Radar.MinScore)
	assert.Equal(t, 7000, cfg.Server.Port)
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	path := writeConfig(t, `
radar:
  max_results: 5
`)
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Radar.MaxResults)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open config file")
	})

	t.Run("directory", func(t *testing.T) {
		_, err := Load(t.TempDir())
		require.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeConfig(t, "graph: [unclosed")
		_, err := Load(path)
		require.Error(t, err)
	})

	t.Run("fails validation", func(t *testing.T) {
		path := writeConfig(t, `
graph:
  batch_size: 0
`)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "config validation failed")
	})
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"GRAPHD_SERVER_HTTP_PORT":        "server.http_port",
		"GRAPHD_GRAPH_RECENT_CAP":        "graph.recent_cap",
		"GRAPHD_VECTORSTORE_QDRANT_HOST": "vectorstore.qdrant_host",
		"GRAPHD_DEBUG":                   "debug",
	}
	for in, want := range tests {
		assert.Equal(t, want, envKey(in), in)
	}
}
