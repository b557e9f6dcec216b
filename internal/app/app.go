// Package app wires together the feedback service dependencies and manages
// the application lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ASP-NET-2/ReviewProvider/internal/catalog"
	"github.com/ASP-NET-2/ReviewProvider/internal/config"
	"github.com/ASP-NET-2/ReviewProvider/internal/event"
	handler "github.com/ASP-NET-2/ReviewProvider/internal/handler/http"
	"github.com/ASP-NET-2/ReviewProvider/internal/repository/postgres"
	"github.com/ASP-NET-2/ReviewProvider/internal/service"
	"github.com/ASP-NET-2/ReviewProvider/migrations"
	"github.com/ASP-NET-2/ReviewProvider/pkg/database"
	"github.com/ASP-NET-2/ReviewProvider/pkg/health"
	"github.com/ASP-NET-2/ReviewProvider/pkg/httpclient"
	"github.com/ASP-NET-2/ReviewProvider/pkg/kafka"
	"github.com/ASP-NET-2/ReviewProvider/pkg/tracing"
)

const serviceName = "feedback-service"

// App holds the initialized application and its long-lived resources.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	producer       *kafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp initializes all dependencies and returns a ready-to-run application.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)

	pool, err := database.NewPostgresPoolWithLogger(ctx, &database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPass,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: time.Duration(cfg.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(cfg.DBMaxConnIdleTimeMins) * time.Minute,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	database.RegisterPoolMetrics(pool, serviceName)

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	producer := kafka.NewProducer(kafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)

	catalogClient := catalog.NewClient(
		httpclient.NewCircuitBreakerClient(
			httpclient.New(httpclient.DefaultConfig()),
			httpclient.DefaultCircuitBreakerConfig("catalog"),
			logger,
		),
		cfg.CatalogBaseURL,
		logger,
	)

	store := postgres.NewStore(pool, logger)
	feedbackService := service.NewFeedbackService(store, catalogClient, event.NewProducer(producer, logger), logger)

	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", pool.Ping)
	healthHandler.Register("kafka", producer.Ping)

	router := handler.NewRouter(handler.RouterConfig{
		FeedbackService: feedbackService,
		HealthHandler:   healthHandler,
		Logger:          logger,
		Environment:     cfg.Environment,
		PprofCIDRs:      cfg.PprofAllowedCIDRs,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails. A graceful shutdown is attempted in both cases.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening",
			slog.String("addr", a.httpServer.Addr),
			slog.String("environment", a.cfg.Environment),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		a.shutdown()
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
		return a.shutdown()
	}
}

// shutdown drains the HTTP server, flushes traces, and closes the Kafka
// producer and database pool.
func (a *App) shutdown() error {
	var errs []error

	drainCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.httpServer.Shutdown(drainCtx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	flushCtx, cancelFlush := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancelFlush()
	if err := a.tracerShutdown(flushCtx); err != nil {
		errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
	}

	if err := a.producer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close kafka producer: %w", err))
	}

	a.pool.Close()

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	a.logger.Info("shutdown complete")
	return nil
}
