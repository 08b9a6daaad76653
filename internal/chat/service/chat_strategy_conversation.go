package service

import (
	"context"

	chatdomain "github.com/boddenberg/cargo-chat-bfa-go/internal/chat/domain"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/intent"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/prompt"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/quote"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/infra/observability"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// ConversationStrategy — default path for every turn
// ============================================================
//
// Routes the text (updating the session context), opens the quote form
// when asked to, and otherwise sends the assembled prompt to the
// generator, falling back to the router's canned reply.

type ConversationStrategy struct {
	router    *intent.Router
	completer *Completer
	metrics   *observability.Metrics
}

// NewConversationStrategy creates the default strategy.
func NewConversationStrategy(router *intent.Router, completer *Completer, metrics *observability.Metrics) *ConversationStrategy {
	return &ConversationStrategy{router: router, completer: completer, metrics: metrics}
}

// CanHandle accepts every turn.
func (s *ConversationStrategy) CanHandle(*Turn) bool { return true }

// Handle answers one free-text turn.
func (s *ConversationStrategy) Handle(ctx context.Context, t *Turn) (*Outcome, error) {
	ctx, span := chatTracer.Start(ctx, "ConversationStrategy.Handle")
	defer span.End()

	d := s.router.Route(t.Text, &t.Session.Context)
	span.SetAttributes(
		attribute.String("chat.intent", string(d.Intent)),
		attribute.Bool("chat.elaborated", d.Elaborated),
	)

	if d.StartQuote {
		form := quote.New(&t.Session.Quote)
		r := form.Start()
		s.metrics.IncrQuoteForm("started")
		return &Outcome{
			Text:         d.Reply + "\n\n" + r.Text,
			Intent:       d.Intent,
			Source:       chatdomain.SourceQuoteForm,
			QuickReplies: r.QuickReplies,
			Quote:        form.Progress(),
			SkipEnrich:   true,
		}, nil
	}

	locations := d.Entities.Locations
	if d.Route != nil {
		locations = []string{d.Route.Origin, d.Route.Destination}
	}
	text, source := s.completer.CompleteOrFallback(ctx, prompt.Input{
		Query:     t.Text,
		Locations: locations,
		History:   t.History,
	}, d.Reply)

	return &Outcome{Text: text, Intent: d.Intent, Source: source}, nil
}
