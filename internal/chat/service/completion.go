package service

import (
	"context"
	"errors"
	"time"

	chatdomain "github.com/boddenberg/cargo-chat-bfa-go/internal/chat/domain"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/port"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/prompt"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/infra/observability"

	"go.uber.org/zap"
)

// ErrNoGenerator is returned by Complete when no text generator is configured.
var ErrNoGenerator = errors.New("no text generator configured")

// GenerationParams are the fixed sampling settings of every call.
type GenerationParams struct {
	MaxOutputTokens int
	Temperature     float64
	TopP            float64
	TopK            int
}

// Completer is the completion proxy: prompt assembly plus one generator call.
type Completer struct {
	generator port.TextGenerator
	builder   *prompt.Builder
	params    GenerationParams
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewCompleter creates the proxy. A nil generator puts the chat in
// fallback-only mode.
func NewCompleter(generator port.TextGenerator, builder *prompt.Builder, params GenerationParams, metrics *observability.Metrics, logger *zap.Logger) *Completer {
	return &Completer{
		generator: generator,
		builder:   builder,
		params:    params,
		metrics:   metrics,
		logger:    logger,
	}
}

// Enabled reports whether a generator is configured.
func (c *Completer) Enabled() bool { return c.generator != nil }

// Provider names the configured generator, "none" in fallback-only mode.
func (c *Completer) Provider() string {
	if c.generator == nil {
		return "none"
	}
	return c.generator.Name()
}

// Complete builds the prompt and returns the generator's text verbatim.
func (c *Completer) Complete(ctx context.Context, in prompt.Input) (*chatdomain.GenerationResult, error) {
	if c.generator == nil {
		return nil, ErrNoGenerator
	}
	ctx, span := chatTracer.Start(ctx, "Completer.Complete")
	defer span.End()

	req := &chatdomain.GenerationRequest{
		Prompt:          c.builder.Build(in),
		MaxOutputTokens: c.params.MaxOutputTokens,
		Temperature:     c.params.Temperature,
		TopP:            c.params.TopP,
		TopK:            c.params.TopK,
	}

	start := time.Now()
	res, err := c.generator.Generate(ctx, req)
	c.metrics.RecordGeneration(c.generator.Name(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	c.metrics.RecordTokens(res.PromptTokens, res.CompletionTokens)
	return res, nil
}

// CompleteOrFallback never fails: any generation error yields fallback
// and SourceFallback.
func (c *Completer) CompleteOrFallback(ctx context.Context, in prompt.Input, fallback string) (string, string) {
	res, err := c.Complete(ctx, in)
	if err == nil {
		return res.Text, chatdomain.SourceAI
	}

	reason := observability.FallbackError
	if errors.Is(err, ErrNoGenerator) {
		reason = observability.FallbackNoGenerator
	} else {
		c.logger.Warn("text generation failed, using canned reply",
			zap.String("provider", c.generator.Name()),
			zap.Error(err),
		)
	}
	c.metrics.IncrFallback(reason)
	return fallback, chatdomain.SourceFallback
}
