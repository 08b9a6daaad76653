package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/boddenberg/cargo-chat-bfa-go/internal/catalog"
	chatdomain "github.com/boddenberg/cargo-chat-bfa-go/internal/chat/domain"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/enrich"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/intent"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/port"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/prompt"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/service"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/domain"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/infra/observability"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockGenerator records prompts and answers with a fixed text or error.
type mockGenerator struct {
	mu      sync.Mutex
	text    string
	err     error
	prompts []string
}

func (m *mockGenerator) Generate(_ context.Context, req *chatdomain.GenerationRequest) (*chatdomain.GenerationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, req.Prompt)
	if m.err != nil {
		return nil, m.err
	}
	return &chatdomain.GenerationResult{Text: m.text, PromptTokens: 10, CompletionTokens: 5}, nil
}

func (m *mockGenerator) Name() string { return "mock" }

func (m *mockGenerator) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

type fixture struct {
	svc     *service.ChatService
	reg     *session.Registry
	metrics *observability.Metrics
}

func newFixture(gen port.TextGenerator) *fixture {
	store := catalog.MustLoad()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	reg := session.NewRegistry(30 * time.Minute)
	router := intent.NewRouter(store, nil)
	completer := service.NewCompleter(gen, prompt.NewBuilder(store), service.GenerationParams{
		MaxOutputTokens: 512, Temperature: 0.7, TopP: 0.95, TopK: 40,
	}, metrics, logger)

	svc := service.NewChatService(
		reg,
		[]service.ChatStrategy{
			service.NewQuoteStrategy(router, completer, metrics, logger),
			service.NewConversationStrategy(router, completer, metrics),
		},
		enrich.New(store),
		10,
		metrics,
		logger,
	)
	return &fixture{svc: svc, reg: reg, metrics: metrics}
}

func (f *fixture) send(t *testing.T, sessionID, msg string) *chatdomain.ChatResponse {
	t.Helper()
	resp, err := f.svc.ProcessMessage(context.Background(), &chatdomain.ChatRequest{Message: msg, SessionID: sessionID})
	require.NoError(t, err)
	return resp
}

func TestProcessMessage_FallbackOnlyMode(t *testing.T) {
	f := newFixture(nil)

	resp := f.send(t, "", "precio Shanghai Manzanillo")

	assert.NotEmpty(t, resp.SessionID)
	assert.NotEmpty(t, resp.MessageID)
	assert.Equal(t, "price", resp.Intent)
	assert.Equal(t, chatdomain.SourceFallback, resp.Source)
	assert.Contains(t, resp.Response, "USD 2850 por contenedor")
	assert.Equal(t, []string{"Sí", "No"}, resp.QuickReplies)
}

func TestProcessMessage_GreetingWithoutGenerator(t *testing.T) {
	f := newFixture(nil)
	greeting := intent.NewReplies(catalog.MustLoad()).Greeting()

	first := f.send(t, "", "hola")
	second := f.send(t, "", "hola")

	assert.Equal(t, greeting, first.Response)
	assert.Equal(t, chatdomain.SourceFallback, first.Source)
	assert.Equal(t, "greeting", first.Intent)
	assert.NotEmpty(t, first.SessionID)
	assert.NotEqual(t, first.SessionID, second.SessionID)
	assert.Empty(t, first.Attachments)
	assert.Nil(t, first.Agent)
	assert.Nil(t, first.WhatsApp)
	assert.Nil(t, first.Tracking)
	assert.Equal(t, 2, f.reg.Count())
}

func TestProcessMessage_UsesGenerator(t *testing.T) {
	gen := &mockGenerator{text: "¡Hola! ¿En qué puedo ayudarle?"}
	f := newFixture(gen)

	resp := f.send(t, "s-1", "hola")

	assert.Equal(t, "¡Hola! ¿En qué puedo ayudarle?", resp.Response)
	assert.Equal(t, chatdomain.SourceAI, resp.Source)
	assert.Equal(t, "greeting", resp.Intent)
	assert.Equal(t, "s-1", resp.SessionID)
	assert.Contains(t, gen.lastPrompt(), "## Mensaje del cliente\nhola")

	snap := f.metrics.Snapshot()
	assert.EqualValues(t, 10, snap.PromptTokens)
	assert.EqualValues(t, 1, snap.TotalTurns)
}

func TestProcessMessage_GeneratorErrorFallsBack(t *testing.T) {
	gen := &mockGenerator{err: &domain.ErrExternalService{Service: "mock", Err: errors.New("503")}}
	f := newFixture(gen)

	resp := f.send(t, "", "¿qué rutas tienen desde Veracruz?")

	assert.Equal(t, chatdomain.SourceFallback, resp.Source)
	assert.Contains(t, resp.Response, "Rotterdam")
	snap := f.metrics.Snapshot()
	assert.EqualValues(t, 1, snap.GenerationErrors)
	assert.InDelta(t, 1.0, snap.FallbackRate, 1e-9)
}

func TestProcessMessage_RejectsBlankMessage(t *testing.T) {
	f := newFixture(nil)

	for _, msg := range []string{"", "   ", "\n\t"} {
		_, err := f.svc.ProcessMessage(context.Background(), &chatdomain.ChatRequest{Message: msg})
		var verr *domain.ErrValidation
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "message", verr.Field)
	}
	assert.Zero(t, f.reg.Count())
}

func TestProcessMessage_RejectsOversizedMessage(t *testing.T) {
	f := newFixture(nil)
	_, err := f.svc.ProcessMessage(context.Background(), &chatdomain.ChatRequest{Message: strings.Repeat("a", service.MaxMessageLength+1)})
	var verr *domain.ErrValidation
	assert.ErrorAs(t, err, &verr)
}

func TestProcessMessage_AffirmativeElaboratesAcrossTurns(t *testing.T) {
	f := newFixture(nil)

	first := f.send(t, "", "Shanghai a Manzanillo")
	require.Equal(t, "route", first.Intent)

	second := f.send(t, first.SessionID, "sí")
	assert.Equal(t, "price", second.Intent)
	assert.Contains(t, second.Response, "USD 3950")

	s, ok := f.reg.Get(first.SessionID)
	require.True(t, ok)
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, "SHA-ZLO", s.Context.LastRoute)
}

func TestProcessMessage_QuoteFormFlow(t *testing.T) {
	gen := &mockGenerator{text: "texto generado"}
	f := newFixture(gen)

	start := f.send(t, "", "quiero cotizar un embarque")
	require.NotNil(t, start.Quote)
	assert.True(t, start.Quote.Active)
	assert.Equal(t, 1, start.Quote.Step)
	assert.Equal(t, chatdomain.SourceQuoteForm, start.Source)
	assert.Contains(t, start.QuickReplies, "Cancelar")
	promptsBefore := len(gen.prompts)

	answers := []string{"Shanghai, China", "Manzanillo, México", "marítimo", "8000 kg", "1", "Contenedor 40'", "Muebles", "FOB"}
	var resp *chatdomain.ChatResponse
	for i, a := range answers {
		resp = f.send(t, start.SessionID, a)
		require.NotNil(t, resp.Quote)
		assert.Equal(t, i+2, resp.Quote.Step)
		assert.Equal(t, chatdomain.SourceQuoteForm, resp.Source)
	}
	// The form bypasses the generator.
	assert.Equal(t, promptsBefore, len(gen.prompts))

	done := f.send(t, start.SessionID, "Sin notas adicionales")
	require.NotNil(t, done.Quote)
	assert.True(t, done.Quote.Completed)
	assert.False(t, done.Quote.Active)
	assert.Equal(t, "quote_submitted", done.Intent)
	assert.Equal(t, "Shanghai, China", done.Quote.Fields.Origin)
	assert.Contains(t, gen.lastPrompt(), "• Incoterm: FOB")

	s, _ := f.reg.Get(start.SessionID)
	assert.False(t, s.Quote.Active)
	msgs := s.Messages()
	var sawSummary bool
	for _, m := range msgs {
		if m.Role == chatdomain.RoleUser && strings.HasPrefix(m.Content, "Resumen de su solicitud") {
			sawSummary = true
		}
	}
	assert.True(t, sawSummary, "summary appended as a user message")
}

func TestProcessMessage_QuoteSubmittedFallbackIncludesSummary(t *testing.T) {
	f := newFixture(nil)

	start := f.send(t, "", "cotizar")
	for _, a := range []string{"Veracruz", "Rotterdam", "marítimo", "2 toneladas", "3", "no sé", "Café 0901.11", "CIF", "ninguna"} {
		f.send(t, start.SessionID, a)
	}
	s, _ := f.reg.Get(start.SessionID)
	msgs := s.Messages()
	last := msgs[len(msgs)-1]
	assert.Equal(t, chatdomain.RoleAssistant, last.Role)
	assert.Contains(t, last.Content, "• Destino: Rotterdam")
	assert.Contains(t, last.Content, "0901.11")
}

func TestProcessMessage_QuoteCancel(t *testing.T) {
	f := newFixture(nil)

	start := f.send(t, "", "cotizar")
	f.send(t, start.SessionID, "Shanghai")
	resp := f.send(t, start.SessionID, "cancelar")

	require.NotNil(t, resp.Quote)
	assert.True(t, resp.Quote.Cancelled)
	s, _ := f.reg.Get(start.SessionID)
	assert.False(t, s.Quote.Active)

	// Next message is routed normally again.
	next := f.send(t, start.SessionID, "hola")
	assert.Equal(t, "greeting", next.Intent)
}

func TestProcessMessage_SeedsHistoryIntoEmptySession(t *testing.T) {
	gen := &mockGenerator{text: "ok"}
	f := newFixture(gen)

	_, err := f.svc.ProcessMessage(context.Background(), &chatdomain.ChatRequest{
		Message:   "¿y el precio?",
		SessionID: "seeded",
		History: []chatdomain.HistoryEntry{
			{Role: "user", Content: "rutas desde Veracruz"},
			{Role: "assistant", Content: "Tenemos Veracruz a Rotterdam."},
			{Role: "user", Content: "  "},
		},
	})
	require.NoError(t, err)

	p := gen.lastPrompt()
	assert.Contains(t, p, "Cliente: rutas desde Veracruz")
	assert.Contains(t, p, "Asistente: Tenemos Veracruz a Rotterdam.")

	s, _ := f.reg.Get("seeded")
	assert.Equal(t, 4, s.Len())

	// A populated session ignores client history.
	_, err = f.svc.ProcessMessage(context.Background(), &chatdomain.ChatRequest{
		Message:   "gracias",
		SessionID: "seeded",
		History:   []chatdomain.HistoryEntry{{Role: "user", Content: "otra cosa"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 6, s.Len())
}

func TestProcessMessage_TrackingPayload(t *testing.T) {
	f := newFixture(nil)

	resp := f.send(t, "", "¿dónde está mi embarque ECR1234567?")
	require.NotNil(t, resp.Tracking)
	assert.Equal(t, "export", resp.Tracking.Direction)
	assert.Equal(t, "tracking", resp.Intent)
}

func TestProcessMessage_ConcurrentSameSession(t *testing.T) {
	f := newFixture(&mockGenerator{text: "ok"})
	const n = 20

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.ProcessMessage(context.Background(), &chatdomain.ChatRequest{Message: "hola", SessionID: "shared"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	s, ok := f.reg.Get("shared")
	require.True(t, ok)
	assert.Equal(t, 2*n, s.Len())
	assert.Equal(t, 1, f.reg.Count())

	// Turns are serialized: user and assistant messages alternate.
	msgs := s.Messages()
	for i, m := range msgs {
		want := chatdomain.RoleUser
		if i%2 == 1 {
			want = chatdomain.RoleAssistant
		}
		assert.Equal(t, want, m.Role, "message %d", i)
	}
}

func TestSessionAdmin(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	resp := f.send(t, "", "hola")
	assert.Len(t, f.svc.ListSessions(ctx), 1)

	var nf *domain.ErrNotFound
	assert.ErrorAs(t, f.svc.DeleteSession(ctx, "missing"), &nf)

	require.NoError(t, f.svc.DeleteSession(ctx, resp.SessionID))
	assert.Empty(t, f.svc.ListSessions(ctx))

	res := f.svc.Cleanup(ctx)
	assert.Equal(t, 0, res.Removed)
	assert.NotNil(t, res.RemovedIDs)
	assert.Equal(t, 0, res.Active)
}
