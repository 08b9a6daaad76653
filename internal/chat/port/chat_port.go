// Package port defines the interfaces the chat service depends on.
//
// The ChatService talks to these ports rather than to concrete clients,
// so tests can swap the text generator and the session store freely.
package port

import (
	"context"

	chatdomain "github.com/boddenberg/cargo-chat-bfa-go/internal/chat/domain"
)

// TextGenerator sends an assembled prompt to a generative-text endpoint
// and returns the first candidate. Implemented by GeminiClient and
// OpenAIClient.
type TextGenerator interface {
	Generate(ctx context.Context, req *chatdomain.GenerationRequest) (*chatdomain.GenerationResult, error)
	Name() string
}

// SessionStore is the session registry as seen by the chat service.
type SessionStore interface {
	GetOrCreate(id string) (*chatdomain.Session, bool)
	Touch(s *chatdomain.Session)
	Delete(id string) bool
	Sweep() []string
	List() []chatdomain.SessionSummary
	Count() int
}
