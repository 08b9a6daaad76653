// Package domain holds the types exchanged by the chat route
// POST /api/chat and the structures kept per conversation.
//
// Request flow:
//  1. The widget sends {"message": "...", "sessionId": "..."}
//  2. The BFA loads (or creates) the session and classifies the intent
//  3. An active quote form intercepts the message; otherwise the prompt is
//     assembled and sent to the text-generation endpoint
//  4. The reply is post-processed into UI payloads (tracking, agent, docs)
//  5. The BFA returns the text plus whatever payloads were attached
package domain

// ============================================================
// Chat — request/response between the widget and the BFA
// ============================================================

// HistoryEntry is one prior turn the widget may send along.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message   string         `json:"message"`
	SessionID string         `json:"sessionId,omitempty"`
	History   []HistoryEntry `json:"history,omitempty"`
}

// Reply sources.
const (
	SourceAI        = "ai"
	SourceFallback  = "fallback"
	SourceQuoteForm = "quote_form"
)

// ChatResponse is what the BFA returns. Only Response and SessionID are
// always present; the rest are attached by the post-processor.
type ChatResponse struct {
	Response     string                 `json:"response"`
	SessionID    string                 `json:"sessionId"`
	MessageID    string                 `json:"messageId,omitempty"`
	Intent       string                 `json:"intent,omitempty"`
	Source       string                 `json:"source,omitempty"`
	QuickReplies []string               `json:"quickReplies,omitempty"`
	Attachments  []Attachment           `json:"attachments,omitempty"`
	Tracking     *TrackingVisualization `json:"tracking,omitempty"`
	Agent        *AgentCard             `json:"agent,omitempty"`
	WhatsApp     *WhatsAppAlert         `json:"whatsapp,omitempty"`
	Quote        *QuoteProgress         `json:"quote,omitempty"`
}

// ============================================================
// Completion proxy — request/result for the text generator
// ============================================================

// GenerationRequest is what the completion proxy sends upstream.
type GenerationRequest struct {
	Prompt          string
	MaxOutputTokens int
	Temperature     float64
	TopP            float64
	TopK            int
}

// GenerationResult is the first candidate returned by the generator.
type GenerationResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	Model            string
}
