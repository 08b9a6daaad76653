package infra

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	chatdomain "github.com/boddenberg/cargo-chat-bfa-go/internal/chat/domain"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/domain"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/infra/resilience"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// OpenAIClient talks to any OpenAI-compatible chat-completions endpoint.
// The assembled prompt is sent as a single user message.
type OpenAIClient struct {
	client openai.Client
	model  string
	guard  *resilience.Guard
}

// NewOpenAIClient creates the client. An empty baseURL keeps the SDK default.
// SDK-level retries are disabled; the guard owns retry policy.
func NewOpenAIClient(baseURL, apiKey, model string, timeout time.Duration, guard *resilience.Guard) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"))
	}
	return &OpenAIClient{
		client: openai.NewClient(opts...),
		model:  model,
		guard:  guard,
	}
}

// Name identifies the provider in logs and metrics.
func (c *OpenAIClient) Name() string { return "openai" }

// Generate sends the prompt and returns the first choice's text.
// TopK has no equivalent in this API and is ignored.
func (c *OpenAIClient) Generate(ctx context.Context, req *chatdomain.GenerationRequest) (*chatdomain.GenerationResult, error) {
	ctx, span := tracer.Start(ctx, "OpenAIClient.Generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", c.model),
		attribute.Int("llm.prompt_chars", len(req.Prompt)),
	)

	params := openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(req.Prompt)},
		Temperature: openai.Float(req.Temperature),
		TopP:        openai.Float(req.TopP),
	}
	if req.MaxOutputTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxOutputTokens))
	}

	result, err := resilience.Execute(ctx, c.guard, func(ctx context.Context) (*chatdomain.GenerationResult, error) {
		res, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			var apiErr *openai.Error
			if errors.As(err, &apiErr) {
				upstream := &domain.ErrUpstreamResponse{StatusCode: apiErr.StatusCode, Reason: apiErr.Message}
				if apiErr.StatusCode < 500 && apiErr.StatusCode != http.StatusTooManyRequests {
					return nil, &resilience.Permanent{Err: upstream}
				}
				return nil, upstream
			}
			return nil, err
		}
		if len(res.Choices) == 0 || strings.TrimSpace(res.Choices[0].Message.Content) == "" {
			return nil, &resilience.Permanent{Err: &domain.ErrUpstreamResponse{Reason: "no choices"}}
		}
		model := res.Model
		if model == "" {
			model = c.model
		}
		return &chatdomain.GenerationResult{
			Text:             res.Choices[0].Message.Content,
			PromptTokens:     int(res.Usage.PromptTokens),
			CompletionTokens: int(res.Usage.CompletionTokens),
			Model:            model,
		}, nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, classify(c.Name(), err)
	}
	return result, nil
}
