package handler

import (
	"context"
	"net/http"
	"time"

	chathandler "github.com/boddenberg/cargo-chat-bfa-go/internal/chat/handler"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/service"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/domain"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/handler/respond"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/infra/observability"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// HealthCheck reports the state of one dependency. LastChecked is filled
// in by the caller when left empty.
type HealthCheck func(ctx context.Context) domain.ServiceHealth

// Options tunes the router.
type Options struct {
	// AllowedOrigins for CORS; empty means any origin.
	AllowedOrigins []string
	// AdminSecret enables HS256 bearer auth on the diagnostics routes.
	AdminSecret string
	Checks      []HealthCheck
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(chatSvc *service.ChatService, metrics *observability.Metrics, logger *zap.Logger, opts Options) http.Handler {
	r := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// --- Middleware ---
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(opts.Checks))
	r.Get("/readyz", readyzHandler(opts.Checks))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- Chat widget API ---
	var admin func(http.Handler) http.Handler
	if opts.AdminSecret != "" {
		admin = AdminAuthMiddleware([]byte(opts.AdminSecret), logger)
	}
	r.Route("/api/chat", chathandler.Routes(chatSvc, admin, logger))

	return r
}

// BreakerCheck turns a circuit breaker state into a health entry. An open
// breaker only degrades the service: the chat keeps answering with canned
// replies.
func BreakerCheck(name string, state func() gobreaker.State) HealthCheck {
	return func(context.Context) domain.ServiceHealth {
		h := domain.ServiceHealth{Name: name, Status: "healthy"}
		switch state() {
		case gobreaker.StateOpen:
			h.Status = "degraded"
			h.Detail = "circuit open, serving canned replies"
		case gobreaker.StateHalfOpen:
			h.Status = "degraded"
			h.Detail = "circuit half-open"
		}
		return h
	}
}

// ============================================================
// Operational endpoints
// ============================================================

func runChecks(ctx context.Context, checks []HealthCheck) domain.HealthStatus {
	now := time.Now().Format(time.RFC3339)

	services := []domain.ServiceHealth{
		{Name: "cargochat-bfa", Status: "healthy", LastChecked: now},
	}
	for _, check := range checks {
		h := check(ctx)
		if h.LastChecked == "" {
			h.LastChecked = now
		}
		services = append(services, h)
	}

	overallStatus := "healthy"
	for _, s := range services {
		if s.Status == "unhealthy" {
			overallStatus = "unhealthy"
			break
		}
		if s.Status == "degraded" {
			overallStatus = "degraded"
		}
	}
	return domain.HealthStatus{Status: overallStatus, Services: services}
}

func healthzHandler(checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, runChecks(r.Context(), checks))
	}
}

// readyzHandler fails only when a dependency is unhealthy; degraded still
// serves traffic.
func readyzHandler(checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := runChecks(r.Context(), checks)
		if status.Status == "unhealthy" {
			respond.JSON(w, http.StatusServiceUnavailable, map[string]any{"status": "not ready", "services": status.Services})
			return
		}
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
