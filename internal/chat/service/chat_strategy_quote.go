package service

import (
	"context"

	chatdomain "github.com/boddenberg/cargo-chat-bfa-go/internal/chat/domain"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/intent"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/prompt"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/quote"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/infra/observability"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// QuoteStrategy — guided quote form, 9 steps + summary
// ============================================================
//
// While the session's form is open every message is an answer to the
// current step and bypasses the generator. When the last step is
// answered the summary is appended to the history as a synthesized user
// message and goes through the completion proxy like any other turn.

type QuoteStrategy struct {
	router    *intent.Router
	completer *Completer
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewQuoteStrategy creates the quote form strategy.
func NewQuoteStrategy(router *intent.Router, completer *Completer, metrics *observability.Metrics, logger *zap.Logger) *QuoteStrategy {
	return &QuoteStrategy{router: router, completer: completer, metrics: metrics, logger: logger}
}

// CanHandle returns true while the session's quote form is open.
func (s *QuoteStrategy) CanHandle(t *Turn) bool {
	return t.Session.Quote.Active
}

// Handle feeds the message to the form.
func (s *QuoteStrategy) Handle(ctx context.Context, t *Turn) (*Outcome, error) {
	ctx, span := chatTracer.Start(ctx, "QuoteStrategy.Handle")
	defer span.End()

	form := quote.New(&t.Session.Quote)
	from := form.Step()
	r := form.Handle(t.Text)
	span.SetAttributes(
		attribute.Int("quote.step_from", int(from)),
		attribute.Int("quote.step_to", int(form.Step())),
	)

	switch {
	case r.Cancelled:
		s.metrics.IncrQuoteForm("cancelled")
		t.Session.Context.LastIntention = string(intent.Quote)
		return &Outcome{
			Text:         r.Text,
			Intent:       intent.Quote,
			Source:       chatdomain.SourceQuoteForm,
			QuickReplies: r.QuickReplies,
			Quote:        &chatdomain.QuoteProgress{TotalSteps: chatdomain.TotalQuoteSteps, Cancelled: true},
			SkipEnrich:   true,
		}, nil

	case r.Completed:
		s.metrics.IncrQuoteForm("completed")
		s.logger.Info("quote form completed", zap.String("session_id", t.Session.ID))

		t.Session.Append(chatdomain.ChatMessage{
			ID:        uuid.NewString(),
			Role:      chatdomain.RoleUser,
			Content:   r.Summary,
			Timestamp: t.Now,
		})

		d := s.router.QuoteSubmitted(r.Summary, &t.Session.Context)
		text, source := s.completer.CompleteOrFallback(ctx, prompt.Input{
			Query:   "El cliente completó el formulario de cotización. Confirme la recepción y resuma los datos:\n" + r.Summary,
			History: t.History,
		}, d.Reply)

		return &Outcome{
			Text:   text,
			Intent: d.Intent,
			Source: source,
			Quote:  &chatdomain.QuoteProgress{Step: int(chatdomain.StepSummary), TotalSteps: chatdomain.TotalQuoteSteps, Fields: r.Fields, Completed: true},
		}, nil
	}

	return &Outcome{
		Text:         r.Text,
		Intent:       intent.Quote,
		Source:       chatdomain.SourceQuoteForm,
		QuickReplies: r.QuickReplies,
		Quote:        form.Progress(),
		SkipEnrich:   true,
	}, nil
}
