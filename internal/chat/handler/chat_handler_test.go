package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/boddenberg/cargo-chat-bfa-go/internal/catalog"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/domain"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/enrich"
	chathandler "github.com/boddenberg/cargo-chat-bfa-go/internal/chat/handler"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/infra"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/intent"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/prompt"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/service"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/infra/observability"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeGemini serves generateContent; while failing is set it answers 500.
type fakeGemini struct {
	failing atomic.Bool
	calls   atomic.Int32
}

func (f *fakeGemini) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	if f.failing.Load() {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Respuesta generada. ¿Desea conocer las tarifas?"}]}}],` +
		`"usageMetadata":{"promptTokenCount":80,"candidatesTokenCount":9}}`))
}

type testServer struct {
	*httptest.Server
	gemini *fakeGemini
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gemini := &fakeGemini{}
	upstream := httptest.NewServer(gemini)
	t.Cleanup(upstream.Close)

	store := catalog.MustLoad()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	guard := resilience.NewGuard("gemini", resilience.Config{MaxRetries: 0, InitialBackoff: time.Millisecond, MaxConcurrency: 8}, logger)
	generator := infra.NewGeminiClient(upstream.URL, "test-key", "gemini-test", 5*time.Second, guard)

	router := intent.NewRouter(store, nil)
	completer := service.NewCompleter(generator, prompt.NewBuilder(store), service.GenerationParams{
		MaxOutputTokens: 256, Temperature: 0.7, TopP: 0.95, TopK: 40,
	}, metrics, logger)
	svc := service.NewChatService(
		session.NewRegistry(time.Hour),
		[]service.ChatStrategy{
			service.NewQuoteStrategy(router, completer, metrics, logger),
			service.NewConversationStrategy(router, completer, metrics),
		},
		enrich.New(store),
		10,
		metrics,
		logger,
	)

	r := chi.NewRouter()
	r.Route("/api/chat", chathandler.Routes(svc, nil, logger))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, gemini: gemini}
}

func (s *testServer) chat(t *testing.T, body string) (*http.Response, domain.ChatResponse) {
	t.Helper()
	resp, err := http.Post(s.URL+"/api/chat", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out domain.ChatResponse
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func (s *testServer) send(t *testing.T, sessionID, message string) domain.ChatResponse {
	t.Helper()
	b, err := json.Marshal(domain.ChatRequest{Message: message, SessionID: sessionID})
	require.NoError(t, err)
	resp, out := s.chat(t, string(b))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return out
}

func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body["error"]
}

func TestChat_GeneratedReply(t *testing.T) {
	srv := newTestServer(t)

	out := srv.send(t, "", "hola")

	assert.NotEmpty(t, out.SessionID)
	assert.Equal(t, "Respuesta generada. ¿Desea conocer las tarifas?", out.Response)
	assert.Equal(t, domain.SourceAI, out.Source)
	assert.Equal(t, []string{"Sí", "No"}, out.QuickReplies)
	assert.EqualValues(t, 1, srv.gemini.calls.Load())
}

func TestChat_UpstreamFailureStillAnswers(t *testing.T) {
	srv := newTestServer(t)
	srv.gemini.failing.Store(true)

	out := srv.send(t, "", "precio Veracruz Rotterdam")

	assert.Equal(t, domain.SourceFallback, out.Source)
	assert.Contains(t, out.Response, "USD 2300")
	assert.Equal(t, "price", out.Intent)
}

func TestChat_BadRequests(t *testing.T) {
	srv := newTestServer(t)

	cases := map[string]struct {
		body string
		want string
	}{
		"empty body":    {body: "", want: "message is required"},
		"blank message": {body: `{"message":"   "}`, want: "message is required"},
		"invalid json":  {body: `{"message":`, want: "invalid request body"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/chat", "application/json", strings.NewReader(tc.body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, decodeError(t, resp), tc.want)
		})
	}
	assert.Zero(t, srv.gemini.calls.Load())
}

func TestChat_QuoteFormEndToEnd(t *testing.T) {
	srv := newTestServer(t)

	start := srv.send(t, "", "quiero cotizar")
	require.NotNil(t, start.Quote)
	assert.Equal(t, 1, start.Quote.Step)
	assert.Equal(t, 9, start.Quote.TotalSteps)

	for _, answer := range []string{"Shanghai, China", "Manzanillo, México", "marítimo", "1,500 kg", "2", "Contenedor 20'", "Electrónicos", "FOB"} {
		srv.send(t, start.SessionID, answer)
	}
	// One step back, then answer again.
	back := srv.send(t, start.SessionID, "volver")
	assert.Equal(t, 8, back.Quote.Step)
	srv.send(t, start.SessionID, "CIF")

	done := srv.send(t, start.SessionID, "Entrega urgente")
	require.NotNil(t, done.Quote)
	assert.True(t, done.Quote.Completed)
	assert.Equal(t, "CIF", done.Quote.Fields.Incoterm)
	assert.Equal(t, "Entrega urgente", done.Quote.Fields.Notes)
	assert.Equal(t, domain.SourceAI, done.Source)
	// Only the completion goes upstream.
	assert.EqualValues(t, 1, srv.gemini.calls.Load())
}

func TestChat_TrackingAndDocuments(t *testing.T) {
	srv := newTestServer(t)
	srv.gemini.failing.Store(true)

	out := srv.send(t, "", "rastrear ECR7654321")
	require.NotNil(t, out.Tracking)
	assert.Equal(t, "ECR7654321", out.Tracking.Code)
	assert.Empty(t, out.Attachments)

	docs := srv.send(t, out.SessionID, "sí")
	assert.Equal(t, "documents", docs.Intent)
	assert.Len(t, docs.Attachments, 4)
}

func TestChat_HistorySeedsNewSession(t *testing.T) {
	srv := newTestServer(t)

	body := `{"message":"gracias","sessionId":"widget-1","history":[{"role":"user","content":"hola"},{"role":"assistant","content":"¡Hola!"}]}`
	resp, out := srv.chat(t, body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "widget-1", out.SessionID)

	listResp, err := http.Get(srv.URL + "/api/chat/sessions")
	require.NoError(t, err)
	defer listResp.Body.Close()

	var list struct {
		Sessions []domain.SessionSummary `json:"sessions"`
		Count    int                     `json:"count"`
	}
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, 4, list.Sessions[0].Messages)
}

func TestSessions_DeleteAndCleanup(t *testing.T) {
	srv := newTestServer(t)
	out := srv.send(t, "", "hola")

	del := func(id string) int {
		req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/chat/sessions/"+id, nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}
	assert.Equal(t, http.StatusNoContent, del(out.SessionID))
	assert.Equal(t, http.StatusNotFound, del(out.SessionID))

	resp, err := http.Get(srv.URL + "/api/chat/sessions/cleanup")
	require.NoError(t, err)
	defer resp.Body.Close()

	var res service.CleanupResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, 0, res.Removed)
	assert.Equal(t, 0, res.Active)
}

func TestMetricsSnapshot(t *testing.T) {
	srv := newTestServer(t)
	srv.send(t, "", "hola")
	srv.gemini.failing.Store(true)
	srv.send(t, "", "hola")

	resp, err := http.Get(srv.URL + "/api/chat/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	var m map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	assert.EqualValues(t, 2, m["totalTurns"])
	assert.InDelta(t, 0.5, m["fallbackRate"], 1e-9)
	assert.EqualValues(t, 80, m["promptTokens"])
}

func TestChat_OversizedBody(t *testing.T) {
	srv := newTestServer(t)

	big := bytes.Repeat([]byte("a"), 70<<10)
	body := append(append([]byte(`{"message":"`), big...), []byte(`"}`)...)
	resp, err := http.Post(srv.URL+"/api/chat", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
