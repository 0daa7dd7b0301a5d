// Package completion sends single-shot prompts to a hosted language model.
package completion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrInvalidConfig indicates invalid client configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyResponse indicates the model returned no text.
	ErrEmptyResponse = errors.New("empty completion response")
)

const instrumentationName = "github.com/piyushh2304/NOTIONGPT-sub000/internal/completion"

// Client completes a system and user prompt pair into free text.
type Client interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Config configures a completion client.
type Config struct {
	// Provider is "anthropic" or "openai".
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	MaxTokens   int
	Temperature float64

	// RateLimit is the sustained request rate per second. Zero disables limiting.
	RateLimit float64
	Burst     int
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = "anthropic"
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 1024
	}
	if c.RateLimit > 0 && c.Burst <= 0 {
		c.Burst = 1
	}
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("%w: model required", ErrInvalidConfig)
	}
	if c.APIKey == "" && c.BaseURL == "" {
		return fmt.Errorf("%w: api key required", ErrInvalidConfig)
	}
	if c.Temperature < 0 || c.Temperature > 1 {
		return fmt.Errorf("%w: temperature must be within [0,1]", ErrInvalidConfig)
	}
	return nil
}

// NewClient creates the client named by cfg.Provider.
func NewClient(cfg Config, logger *zap.Logger) (Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.ApplyDefaults()

	var (
		c   Client
		err error
	)
	switch cfg.Provider {
	case "anthropic":
		c, err = NewAnthropicClient(cfg, logger)
	case "openai":
		c, err = NewOpenAIClient(cfg, logger)
	default:
		return nil, fmt.Errorf("%w: unsupported provider %q", ErrInvalidConfig, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// observe is deferred by clients to log the outcome of a call.
func observe(logger *zap.Logger, provider, model string, start time.Time, errp *error) {
	fields := []zap.Field{
		zap.String("provider", provider),
		zap.String("model", model),
		zap.Duration("duration", time.Since(start)),
	}
	if errp != nil && *errp != nil {
		logger.Warn("completion failed", append(fields, zap.Error(*errp))...)
		return
	}
	logger.Debug("completion finished", fields...)
}
