package vectorstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Config selects and configures an Index backend.
type Config struct {
	Provider string // chromem or qdrant
	Chromem  ChromemConfig
	Qdrant   QdrantConfig
}

// NewIndex creates the backend named by cfg.Provider.
func NewIndex(ctx context.Context, cfg Config, logger *zap.Logger) (Index, error) {
	switch cfg.Provider {
	case "chromem", "":
		idx, err := NewChromemIndex(cfg.Chromem, logger)
		if err != nil {
			return nil, err
		}
		return idx, nil
	case "qdrant":
		idx, err := NewQdrantIndex(ctx, cfg.Qdrant, logger)
		if err != nil {
			return nil, err
		}
		return idx, nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
}
