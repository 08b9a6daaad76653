// Package handler implements the /api/chat routes used by the website
// chat widget, plus the session diagnostics.
//
// ============================================================
// ROUTES
// ============================================================
//
//	POST   /api/chat                    → one chat turn
//	GET    /api/chat/sessions           → live sessions (admin)
//	GET    /api/chat/sessions/cleanup   → run the inactivity sweep (admin)
//	DELETE /api/chat/sessions/{id}      → forget one session (admin)
//	GET    /api/chat/metrics            → counters snapshot (admin)
//
// Handlers are thin: decode, delegate to ChatService, encode. Generator
// failures never show up here; the service already replaced them with
// the canned reply.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/domain"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/service"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/handler/respond"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// tracer is the OpenTelemetry tracer for the chat/handler module.
var tracer = otel.Tracer("chat/handler")

// maxBodyBytes caps the request body; a message is at most a few KB.
const maxBodyBytes = 64 << 10

// Routes mounts the chat endpoints. admin guards the diagnostics; pass nil
// to leave them open.
func Routes(chatSvc *service.ChatService, admin func(http.Handler) http.Handler, logger *zap.Logger) func(chi.Router) {
	return func(r chi.Router) {
		r.Post("/", ChatHandler(chatSvc, logger))

		r.Group(func(r chi.Router) {
			if admin != nil {
				r.Use(admin)
			}
			r.Get("/sessions", ListSessionsHandler(chatSvc))
			r.Get("/sessions/cleanup", CleanupHandler(chatSvc))
			r.Delete("/sessions/{id}", DeleteSessionHandler(chatSvc, logger))
			r.Get("/metrics", MetricsHandler(chatSvc))
		})
	}
}

// ============================================================
// ChatHandler — POST /api/chat
// ============================================================

// ChatHandler answers one message.
//
// Request:
//
//	{"message": "precio Shanghai Manzanillo", "sessionId": "…", "history": [...]}
//
// Response (200 OK):
//
//	{"response": "Tarifas vigentes…", "sessionId": "…", "intent": "price", "quickReplies": ["Sí","No"]}
//
// sessionId is optional; when missing a new session is created and its id
// returned so the widget can send it back on the next turn.
func ChatHandler(chatSvc *service.ChatService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/chat")
		defer span.End()

		var req domain.ChatRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				respond.Error(w, http.StatusBadRequest, "message is required")
				return
			}
			respond.Error(w, http.StatusBadRequest, "invalid request body: expected {\"message\": \"your message\"}")
			return
		}

		resp, err := chatSvc.ProcessMessage(ctx, &req)
		if err != nil {
			respond.ServiceError(w, err, logger)
			return
		}
		span.SetAttributes(
			attribute.String("session.id", resp.SessionID),
			attribute.String("chat.intent", resp.Intent),
			attribute.String("chat.source", resp.Source),
		)

		respond.JSON(w, http.StatusOK, resp)
	}
}

// ============================================================
// Session diagnostics
// ============================================================

// ListSessionsHandler returns every live session.
func ListSessionsHandler(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions := chatSvc.ListSessions(r.Context())
		respond.JSON(w, http.StatusOK, map[string]any{
			"sessions": sessions,
			"count":    len(sessions),
		})
	}
}

// CleanupHandler sweeps inactive sessions now instead of waiting for the
// scheduler.
func CleanupHandler(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, chatSvc.Cleanup(r.Context()))
	}
}

// DeleteSessionHandler forgets one session.
func DeleteSessionHandler(chatSvc *service.ChatService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := chatSvc.DeleteSession(r.Context(), id); err != nil {
			respond.ServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// MetricsHandler returns the counters snapshot as JSON.
func MetricsHandler(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, chatSvc.Metrics())
	}
}
