// Package service implements the ChatService behind POST /api/chat.
//
// ============================================================
// ARCHITECTURE — Strategy pattern per turn
// ============================================================
//
// Full flow of one turn:
//  1. Handler receives POST /api/chat with {"message", "sessionId", "history"}
//  2. ChatService.ProcessMessage() loads or creates the session and locks it
//  3. An empty session is seeded with the client-supplied history
//  4. The first strategy whose CanHandle accepts the turn answers it;
//     QuoteStrategy wins while a quote form is open, otherwise
//     ConversationStrategy routes the text and calls the generator
//  5. The reply is post-processed into UI payloads (enrich)
//  6. The assistant message is appended and the response returned
//
// Generator failures never reach the caller: the router's canned reply is
// used instead and the response is marked with source "fallback".
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	chatdomain "github.com/boddenberg/cargo-chat-bfa-go/internal/chat/domain"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/enrich"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/intent"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/port"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/domain"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/infra/observability"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// chatTracer is the OpenTelemetry tracer for the chat module.
var chatTracer = otel.Tracer("chat/service")

var errNoStrategy = errors.New("no chat strategy accepted the turn")

// MaxMessageLength bounds a single user message, in runes.
const MaxMessageLength = 2000

// ============================================================
// ChatStrategy — one way of answering a turn
// ============================================================

// Turn is everything a strategy needs. The session lock is held.
type Turn struct {
	Session *chatdomain.Session
	Text    string
	// History is the session history before this turn's user message.
	History []chatdomain.ChatMessage
	Now     time.Time
}

// Outcome is a strategy's answer before post-processing.
type Outcome struct {
	Text   string
	Intent intent.Intent
	Source string
	// QuickReplies, when set, replace the enricher's suggestions.
	QuickReplies []string
	Quote        *chatdomain.QuoteProgress
	// SkipEnrich disables payload detection (quote form prompts).
	SkipEnrich bool
}

// ChatStrategy answers a turn. The first strategy whose CanHandle returns
// true handles it.
type ChatStrategy interface {
	CanHandle(t *Turn) bool
	Handle(ctx context.Context, t *Turn) (*Outcome, error)
}

// ============================================================
// ChatService — orchestrator
// ============================================================

// Option configures a ChatService.
type Option func(*ChatService)

// WithClock replaces time.Now for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *ChatService) { s.now = now }
}

// ChatService is the main chat use case.
type ChatService struct {
	sessions     port.SessionStore
	strategies   []ChatStrategy
	enricher     *enrich.Enricher
	metrics      *observability.Metrics
	logger       *zap.Logger
	historyLimit int
	now          func() time.Time
}

// NewChatService wires the service. Order of strategies matters: the first
// that accepts a turn wins.
func NewChatService(
	sessions port.SessionStore,
	strategies []ChatStrategy,
	enricher *enrich.Enricher,
	historyLimit int,
	metrics *observability.Metrics,
	logger *zap.Logger,
	opts ...Option,
) *ChatService {
	s := &ChatService{
		sessions:     sessions,
		strategies:   strategies,
		enricher:     enricher,
		metrics:      metrics,
		logger:       logger,
		historyLimit: historyLimit,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessMessage answers one user message.
func (s *ChatService) ProcessMessage(ctx context.Context, req *chatdomain.ChatRequest) (*chatdomain.ChatResponse, error) {
	ctx, span := chatTracer.Start(ctx, "ChatService.ProcessMessage")
	defer span.End()

	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil, &domain.ErrValidation{Field: "message", Message: "message is required"}
	}
	if len([]rune(text)) > MaxMessageLength {
		return nil, &domain.ErrValidation{Field: "message", Message: "message is too long"}
	}

	sess, created := s.sessions.GetOrCreate(req.SessionID)
	sess.Lock()
	defer sess.Unlock()
	span.SetAttributes(attribute.String("session.id", sess.ID), attribute.Bool("session.created", created))

	if sess.Len() == 0 && len(req.History) > 0 {
		s.seed(sess, req.History)
	}

	turn := &Turn{Session: sess, Text: text, History: sess.Recent(s.historyLimit), Now: s.now()}
	sess.Append(s.message(chatdomain.RoleUser, text))

	out, err := s.dispatch(ctx, turn)
	if err != nil {
		s.logger.Error("chat turn failed", zap.String("session_id", sess.ID), zap.Error(err))
		return nil, err
	}

	// The flag follows the text actually shown, generated or canned.
	if !sess.Quote.Active {
		sess.Context.AwaitingResponse = enrich.IsYesNoQuestion(out.Text)
	}

	reply := s.message(chatdomain.RoleAssistant, out.Text)
	reply.Intent = string(out.Intent)
	if !out.SkipEnrich {
		e := s.enricher.Enrich(out.Text, text, out.Intent)
		reply.Tracking = e.Tracking
		reply.Agent = e.Agent
		reply.WhatsApp = e.WhatsApp
		reply.Attachments = e.Attachments
		reply.QuickReplies = e.QuickReplies
	}
	if out.QuickReplies != nil {
		reply.QuickReplies = out.QuickReplies
	}
	sess.Append(reply)
	s.sessions.Touch(sess)

	s.metrics.RecordTurn(string(out.Intent), out.Source)
	s.metrics.SetActiveSessions(s.sessions.Count())

	s.logger.Info("chat turn",
		zap.String("session_id", sess.ID),
		zap.Bool("new_session", created),
		zap.String("intent", string(out.Intent)),
		zap.String("source", out.Source),
		zap.Int("message_length", len(text)),
	)

	return &chatdomain.ChatResponse{
		Response:     reply.Content,
		SessionID:    sess.ID,
		MessageID:    reply.ID,
		Intent:       reply.Intent,
		Source:       out.Source,
		QuickReplies: reply.QuickReplies,
		Attachments:  reply.Attachments,
		Tracking:     reply.Tracking,
		Agent:        reply.Agent,
		WhatsApp:     reply.WhatsApp,
		Quote:        out.Quote,
	}, nil
}

func (s *ChatService) dispatch(ctx context.Context, t *Turn) (*Outcome, error) {
	for _, strategy := range s.strategies {
		if strategy.CanHandle(t) {
			return strategy.Handle(ctx, t)
		}
	}
	// Strategies always end with ConversationStrategy, which accepts
	// everything; reaching here is a wiring error.
	return nil, errNoStrategy
}

// seed copies client-side history into an empty session, skipping blank
// entries.
func (s *ChatService) seed(sess *chatdomain.Session, history []chatdomain.HistoryEntry) {
	for _, h := range history {
		content := strings.TrimSpace(h.Content)
		if content == "" {
			continue
		}
		sess.Append(s.message(chatdomain.ParseRole(h.Role), content))
	}
}

func (s *ChatService) message(role chatdomain.Role, content string) chatdomain.ChatMessage {
	return chatdomain.ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: s.now(),
	}
}
