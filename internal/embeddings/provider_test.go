package embeddings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ProviderConfig
		wantErr error
		check   func(t *testing.T, p Provider)
	}{
		{
			name: "tei",
			cfg:  ProviderConfig{Provider: "tei", BaseURL: "http://localhost:8080", Model: "BAAI/bge-base-en-v1.5"},
			check: func(t *testing.T, p Provider) {
				assert.IsType(t, &TEIProvider{}, p)
				assert.Equal(t, 768, p.Dimension())
			},
		},
		{
			name:    "tei without url",
			cfg:     ProviderConfig{Provider: "tei"},
			wantErr: ErrInvalidConfig,
		},
		{
			name: "openai with explicit dimension",
			cfg:  ProviderConfig{Provider: "openai", Model: "text-embedding-3-small", APIKey: "sk-test", Dimension: 512},
			check: func(t *testing.T, p Provider) {
				assert.IsType(t, &OpenAIProvider{}, p)
				assert.Equal(t, 512, p.Dimension())
			},
		},
		{
			name:    "openai without model",
			cfg:     ProviderConfig{Provider: "openai", APIKey: "sk-test"},
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "unknown",
			cfg:     ProviderConfig{Provider: "word2vec"},
			wantErr: ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.cfg, nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			defer p.Close()
			tt.check(t, p)
		})
	}
}

func TestDetectDimensionFromModel(t *testing.T) {
	tests := map[string]int{
		"BAAI/bge-small-en-v1.5":  384,
		"BAAI/bge-large-en-v1.5":  1024,
		"text-embedding-3-large":  3072,
		"text-embedding-ada-002":  1536,
		"thenlper/gte-base":       768,
		"some/unknown-embeddings": 384,
	}
	for model, want := range tests {
		assert.Equal(t, want, detectDimensionFromModel(model), model)
	}
}
