package infra

import (
	"context"
	"net/http"
	"strings"
	"time"

	chatdomain "github.com/boddenberg/cargo-chat-bfa-go/internal/chat/domain"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/domain"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/infra/resilience"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DefaultGeminiBaseURL is the public Generative Language API.
const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// ============================================================
// GeminiClient — generateContent over REST
// ============================================================
//
//	POST {baseURL}/v1beta/models/{model}:generateContent
//	Header: x-goog-api-key
//	Request:  {"contents":[{"parts":[{"text": prompt}]}], "generationConfig":{...}}
//	Response: {"candidates":[{"content":{"parts":[{"text":"..."}]}}], "usageMetadata":{...}}

type GeminiClient struct {
	http  *resty.Client
	model string
	guard *resilience.Guard
}

// NewGeminiClient creates the client. An empty baseURL means DefaultGeminiBaseURL.
func NewGeminiClient(baseURL, apiKey, model string, timeout time.Duration, guard *resilience.Guard) *GeminiClient {
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	hc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-goog-api-key", apiKey)
	return &GeminiClient{http: hc, model: model, guard: guard}
}

// Name identifies the provider in logs and metrics.
func (c *GeminiClient) Name() string { return "gemini" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
	ModelVersion string `json:"modelVersion"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends the prompt and returns the first candidate's text.
func (c *GeminiClient) Generate(ctx context.Context, req *chatdomain.GenerationRequest) (*chatdomain.GenerationResult, error) {
	ctx, span := tracer.Start(ctx, "GeminiClient.Generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", c.model),
		attribute.Int("llm.prompt_chars", len(req.Prompt)),
	)

	body := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     req.Temperature,
			TopP:            req.TopP,
			TopK:            req.TopK,
			MaxOutputTokens: req.MaxOutputTokens,
		},
	}

	result, err := resilience.Execute(ctx, c.guard, func(ctx context.Context) (*chatdomain.GenerationResult, error) {
		return c.call(ctx, body)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, classify(c.Name(), err)
	}
	span.SetAttributes(
		attribute.Int("llm.prompt_tokens", result.PromptTokens),
		attribute.Int("llm.completion_tokens", result.CompletionTokens),
	)
	return result, nil
}

func (c *GeminiClient) call(ctx context.Context, body geminiRequest) (*chatdomain.GenerationResult, error) {
	var out geminiResponse
	var apiErr geminiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("model", c.model).
		SetBody(body).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1beta/models/{model}:generateContent")
	if err != nil {
		return nil, err
	}

	if !resp.IsSuccess() {
		reason := apiErr.Error.Message
		if reason == "" {
			reason = http.StatusText(resp.StatusCode())
		}
		upstream := &domain.ErrUpstreamResponse{StatusCode: resp.StatusCode(), Reason: reason}
		if resp.StatusCode() < 500 && resp.StatusCode() != http.StatusTooManyRequests {
			return nil, &resilience.Permanent{Err: upstream}
		}
		return nil, upstream
	}

	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return nil, &resilience.Permanent{Err: &domain.ErrUpstreamResponse{Reason: "no candidates"}}
	}
	text := out.Candidates[0].Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return nil, &resilience.Permanent{Err: &domain.ErrUpstreamResponse{Reason: "empty candidate text"}}
	}

	model := out.ModelVersion
	if model == "" {
		model = c.model
	}
	return &chatdomain.GenerationResult{
		Text:             text,
		PromptTokens:     out.UsageMetadata.PromptTokenCount,
		CompletionTokens: out.UsageMetadata.CandidatesTokenCount,
		Model:            model,
	}, nil
}
