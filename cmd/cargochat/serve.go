package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/cargo-chat-bfa-go/internal/catalog"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/enrich"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/infra"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/intent"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/port"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/prompt"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/service"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/config"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/handler"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/infra/observability"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/infra/scheduler"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/session"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and the session sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			// --- Load .env file (for local development) ---
			if err := config.LoadDotEnv(envFile); err != nil {
				return fmt.Errorf("load %s: %w", envFile, err)
			}
			cfg := config.Load()

			logger := observability.NewLogger(cfg.LogLevel)
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, logger)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	return cmd
}

// app is the wired service graph.
type app struct {
	router    http.Handler
	scheduler *scheduler.Scheduler
	sessions  *session.Registry
}

// buildApp wires every component from cfg.
func buildApp(cfg *config.Config, metrics *observability.Metrics, logger *zap.Logger) (*app, error) {
	store, err := loadCatalog(cfg.CatalogFile)
	if err != nil {
		return nil, err
	}

	// --- Text generator ---
	var checks []handler.HealthCheck
	var generator port.TextGenerator
	if cfg.GenerationEnabled() {
		guard := resilience.NewGuard(cfg.LLMProvider, resilience.Config{
			MaxRetries:     cfg.MaxRetries,
			InitialBackoff: cfg.InitialBackoff,
			MaxConcurrency: cfg.MaxConcurrency,
		}, logger)

		switch cfg.LLMProvider {
		case config.ProviderGemini:
			generator = infra.NewGeminiClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.HTTPTimeout, guard)
		case config.ProviderOpenAI:
			generator = infra.NewOpenAIClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.HTTPTimeout, guard)
		default:
			return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
		}
		checks = append(checks, handler.BreakerCheck(cfg.LLMProvider, guard.State))
		logger.Info("text generation enabled",
			zap.String("provider", cfg.LLMProvider),
			zap.String("model", cfg.LLMModel),
		)
	} else {
		logger.Warn("no LLM API key configured, answering with canned replies only")
	}

	// --- Chat ---
	sessions := session.NewRegistry(cfg.SessionTTL)
	router := intent.NewRouter(store, nil)
	completer := service.NewCompleter(generator, prompt.NewBuilder(store), service.GenerationParams{
		MaxOutputTokens: cfg.MaxOutputTokens,
		Temperature:     cfg.Temperature,
		TopP:            cfg.TopP,
		TopK:            cfg.TopK,
	}, metrics, logger)

	chatSvc := service.NewChatService(
		sessions,
		[]service.ChatStrategy{
			service.NewQuoteStrategy(router, completer, metrics, logger),
			service.NewConversationStrategy(router, completer, metrics),
		},
		enrich.New(store),
		cfg.HistoryLimit,
		metrics,
		logger,
	)

	sched, err := scheduler.New(cfg.SessionSweepSchedule, sessions, metrics, logger)
	if err != nil {
		return nil, err
	}

	return &app{
		router: handler.NewRouter(chatSvc, metrics, logger, handler.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AdminSecret:    cfg.AdminJWTSecret,
			Checks:         checks,
		}),
		scheduler: sched,
		sessions:  sessions,
	}, nil
}

func loadCatalog(path string) (*catalog.Store, error) {
	if path == "" {
		return catalog.Load()
	}
	return catalog.LoadFile(path)
}

// runServe blocks until ctx is cancelled, then drains the server.
func runServe(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("llm_provider", cfg.LLMProvider),
		zap.Bool("generation_enabled", cfg.GenerationEnabled()),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("session_ttl", cfg.SessionTTL),
		zap.String("sweep_schedule", cfg.SessionSweepSchedule),
		zap.Bool("admin_auth", cfg.AdminJWTSecret != ""),
	)

	// --- Tracing ---
	shutdownTracer, err := observability.InitTracer(cfg.OTLPEndpoint, "cargochat-bfa")
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer shutdownTracer(context.Background())

	metrics := observability.NewMetrics()
	a, err := buildApp(cfg, metrics, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      a.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.HTTPTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.scheduler.Run(gCtx)
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped", zap.Int("sessions_dropped", a.sessions.Count()))
	return nil
}
