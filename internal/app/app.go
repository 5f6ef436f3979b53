// Package app wires together all dependencies and runs the storefront daemon.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cipr/storefront/internal/backend"
	"github.com/cipr/storefront/internal/config"
	"github.com/cipr/storefront/internal/event"
	handler "github.com/cipr/storefront/internal/handler/http"
	"github.com/cipr/storefront/internal/repository"
	memoryrepo "github.com/cipr/storefront/internal/repository/memory"
	redisrepo "github.com/cipr/storefront/internal/repository/redis"
	"github.com/cipr/storefront/internal/service"
	"github.com/cipr/storefront/pkg/database"
	"github.com/cipr/storefront/pkg/health"
	"github.com/cipr/storefront/pkg/httpclient"
	pkgkafka "github.com/cipr/storefront/pkg/kafka"
	"github.com/cipr/storefront/pkg/tracing"
)

// App holds the assembled storefront daemon.
type App struct {
	cfg             *config.Config
	logger          *slog.Logger
	rdb             *redis.Client
	producer        *pkgkafka.Producer
	session         *service.SessionService
	httpServer      *http.Server
	tracingShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	app := &App{cfg: cfg, logger: logger}

	// Tracing (disabled by default).
	tracingCfg := tracing.DefaultConfig("storefront")
	tracingCfg.Enabled = cfg.TracingEnabled
	tracingCfg.OTLPEndpoint = cfg.TracingEndpoint
	tracingCfg.SampleRate = cfg.TracingSampleRate
	tracingCfg.Environment = cfg.Environment
	shutdown, err := tracing.InitTracer(ctx, tracingCfg)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	app.tracingShutdown = shutdown

	// Durable token slot: Redis when available, in-memory otherwise.
	var store repository.SessionStore
	if cfg.RedisEnabled {
		redisCfg := database.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		}
		rdb, err := database.NewRedisClient(ctx, redisCfg)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis", slog.String("addr", redisCfg.Addr()))
		app.rdb = rdb
		store = redisrepo.NewSessionStore(rdb, time.Duration(cfg.SessionTTLHours)*time.Hour)
	} else {
		logger.Info("redis disabled, session tokens will not survive restarts")
		store = memoryrepo.NewSessionStore()
	}

	// Notification port: Kafka-backed when enabled, otherwise a no-op.
	var notifier service.Notifier = service.NopNotifier{}
	if cfg.KafkaEnabled {
		kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
		app.producer = pkgkafka.NewProducer(kafkaCfg, logger)
		notifier = event.NewKafkaNotifier(app.producer, cfg.KafkaTopic, logger)
		logger.Info("kafka notifier initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Backend HTTP client, with retries and an optional circuit breaker.
	clientCfg := httpclient.DefaultConfig()
	clientCfg.Timeout = time.Duration(cfg.BackendTimeoutSecs) * time.Second
	clientCfg.MaxRetries = cfg.BackendMaxRetries
	baseClient := httpclient.New(clientCfg)
	var doer backend.HTTPDoer = baseClient
	if cfg.BreakerEnabled {
		breakerCfg := httpclient.DefaultCircuitBreakerConfig("backend")
		breakerCfg.FailureRatio = cfg.BreakerRatio
		doer = httpclient.NewCircuitBreakerClient(baseClient, breakerCfg, logger)
	}

	token := &backend.BearerToken{}
	client := backend.NewClient(cfg.BackendBaseURL, doer, token, logger)

	// Build the dependency graph.
	sessionService := service.NewSessionService(client, store, token, notifier, logger, cfg.SessionKey)
	catalogService := service.NewCatalogService(client, sessionService, logger)
	cartService := service.NewCartService(client, catalogService, sessionService, notifier, logger)
	sessionService.OnAuthChange(cartService.HandleAuthChange)
	app.session = sessionService

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("backend", client.Ping)
	if app.rdb != nil {
		healthHandler.Register("redis", func(ctx context.Context) error {
			return app.rdb.Ping(ctx).Err()
		})
	}
	if app.producer != nil {
		healthHandler.Register("kafka", app.producer.Ping)
	}

	// HTTP router.
	router := handler.NewRouter(catalogService, cartService, sessionService, healthHandler, logger, handler.RouterConfig{
		RateLimitRPS:      cfg.RateLimitRPS,
		RateLimitBurst:    cfg.RateLimitBurst,
		CatalogCacheAge:   cfg.CatalogCacheMaxAge,
		AllowedCORSOrigin: cfg.CORSOrigins,
	})

	app.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return app, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	// Pick up a persisted session before serving traffic.
	restoreCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	a.session.Restore(restoreCtx)
	cancel()

	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	if a.tracingShutdown != nil {
		if err := a.tracingShutdown(shutdownCtx); err != nil {
			a.logger.Error("tracing shutdown error", slog.String("error", err.Error()))
		}
	}

	a.logger.Info("application shutdown complete")
	return nil
}
