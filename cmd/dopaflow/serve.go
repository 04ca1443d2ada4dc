package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/board"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/config"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/crmapi"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/domain"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/http/handler"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/idempotency"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/observability/logger"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/ratelimit"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/session"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/telemetry"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

const sweepInterval = time.Minute

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the board BFF server",
		Long:  `Start the DopaFlow board HTTP server with sessions, rate limiting and observability`,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	log, err := logger.New(cfg.OTELServiceName, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info(ctx, "starting dopaflow board server",
		logger.Module("serve"),
		zap.String("version", telemetry.ServiceVersion),
		zap.String("app_env", cfg.AppEnv),
	)

	// Telemetry is strictly opt-in
	var tracerProvider *sdktrace.TracerProvider
	var meterProvider *sdkmetric.MeterProvider
	var metrics *telemetry.Metrics

	if cfg.OTELEnabled && cfg.OTELExporterEndpoint != "" {
		log.Info(ctx, "initializing telemetry", zap.String("endpoint", cfg.OTELExporterEndpoint))

		tp, err := telemetry.InitTracer(ctx, cfg.OTELServiceName, cfg.OTELExporterEndpoint, cfg.OTELSamplingRatio)
		if err != nil {
			log.Warn(ctx, "failed to initialize tracer, continuing without tracing", zap.Error(err))
		} else {
			tracerProvider = tp
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
					log.Error(shutdownCtx, "failed to shutdown tracer provider", zap.Error(err))
				}
			}()
		}

		mp, m, err := telemetry.InitMetrics(ctx, cfg.OTELServiceName, cfg.OTELExporterEndpoint)
		if err != nil {
			log.Warn(ctx, "failed to initialize metrics, continuing without metrics", zap.Error(err))
		} else {
			meterProvider = mp
			metrics = m
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := meterProvider.Shutdown(shutdownCtx); err != nil {
					log.Error(shutdownCtx, "failed to shutdown meter provider", zap.Error(err))
				}
			}()
		}

		log.Info(ctx, "telemetry initialized", zap.Bool("tracing", tracerProvider != nil), zap.Bool("metrics", metrics != nil))
	} else {
		log.Info(ctx, "telemetry disabled (opt-in only or missing endpoint)")
	}

	log.Info(ctx, "connecting to redis")
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info(ctx, "redis connected")

	promRegistry := telemetry.NewRegistry()
	boardMetrics := telemetry.NewBoardMetrics(promRegistry)

	sessions := session.NewRedisStore(redisClient, cfg.SessionTTL)

	// The base client carries no token; each session gets a copy bound to its own.
	backend, err := crmapi.New(crmapi.Config{
		BaseURL: cfg.APIBaseURL,
		Tokens:  session.StaticToken(""),
		Timeout: cfg.APITimeout,
		Metrics: boardMetrics,
		Logger:  log.Named("crmapi"),
	})
	if err != nil {
		return fmt.Errorf("failed to create CRM client: %w", err)
	}

	registry := board.NewRegistry(cfg.SessionTTL, boardMetrics)
	go registry.Run(ctx, sweepInterval)

	var rateLimitCounter metric.Int64Counter
	if metrics != nil {
		rateLimitCounter = metrics.RateLimitRejections
	}
	rateLimiter := ratelimit.NewRedisRateLimiter(redisClient, rateLimitCounter)

	boardHandler := handler.NewBoardHandler(registry, newBoardFactory(backend, sessions, boardOptions(cfg, boardMetrics), log))
	sessionHandler := handler.NewSessionHandler(sessions, userLookup(backend), registry, rateLimiter, cfg.SessionTTL, cfg.IsProduction())

	r := buildRouter(RouterDeps{
		Cfg:            cfg,
		Log:            log,
		Metrics:        metrics,
		Prometheus:     promRegistry,
		Redis:          redisClient,
		Sessions:       sessions,
		RateLimiter:    rateLimiter,
		Idempotency:    idempotency.NewRedisStore(redisClient, idempotency.DefaultTTL),
		BoardHandler:   boardHandler,
		SessionHandler: sessionHandler,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting http server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info(ctx, "shutdown signal received, starting graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown error", zap.Error(err))
	}

	log.Info(shutdownCtx, "shutdown complete", zap.Int("open_boards", registry.Len()))
	return nil
}

// boardOptions maps the configuration onto controller tunables.
func boardOptions(cfg *config.Config, metrics *telemetry.BoardMetrics) board.Options {
	return board.Options{
		ProgressStep:        cfg.ProgressStep,
		OpportunityPageSize: cfg.OpportunityPageSize,
		ContactPageSize:     cfg.ContactPageSize,
		SearchDebounce:      cfg.SearchDebounce,
		NotificationTTL:     cfg.NotificationTTL,
		Metrics:             metrics,
	}
}

// tokenSources hands out the bearer token behind a BFF session id.
type tokenSources interface {
	Source(id string) crmapi.TokenSource
}

// newBoardFactory opens the session behind a BFF session id: the current user
// is fetched once with the session's token.
func newBoardFactory(backend *crmapi.Client, sessions tokenSources, opts board.Options, log *logger.Logger) board.Factory {
	return func(ctx context.Context, sessionID string) (*board.Controller, error) {
		tokens := sessions.Source(sessionID)
		api := backend.WithTokens(tokens)

		sess, err := (&session.Provider{Tokens: tokens, Users: api}).Open(ctx)
		if err != nil {
			return nil, err
		}
		return board.NewController(api, sess, opts, log.Named("board")), nil
	}
}

func userLookup(backend *crmapi.Client) handler.UserLookup {
	return func(ctx context.Context, token string) (domain.User, error) {
		return backend.WithTokens(session.StaticToken(token)).CurrentUser(ctx)
	}
}
