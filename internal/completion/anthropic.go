package completion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// AnthropicClient completes prompts through the Anthropic Messages API.
//
// Requests are never retried; callers decide how to degrade.
type AnthropicClient struct {
	client  anthropic.Client
	config  Config
	limiter *rate.Limiter
	logger  *zap.Logger
}

var _ Client = (*AnthropicClient)(nil)

// NewAnthropicClient creates an Anthropic-backed client.
func NewAnthropicClient(cfg Config, logger *zap.Logger) (*AnthropicClient, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	c := &AnthropicClient{
		client: anthropic.NewClient(opts...),
		config: cfg,
		logger: logger.Named("completion.anthropic"),
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst)
	}
	return c, nil
}

// Complete implements Client.
func (c *AnthropicClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (_ string, err error) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "completion.anthropic.complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("model", c.config.Model),
		attribute.Int("prompt_length", len(userPrompt)),
	)
	defer observe(c.logger, "anthropic", c.config.Model, time.Now(), &err)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.config.Model),
		MaxTokens:   int64(c.config.MaxTokens),
		Temperature: anthropic.Float(c.config.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic API call failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}

	span.SetAttributes(
		attribute.Int64("input_tokens", resp.Usage.InputTokens),
		attribute.Int64("output_tokens", resp.Usage.OutputTokens),
	)
	span.SetStatus(codes.Ok, "")
	return sb.String(), nil
}
