package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/helsedok/dokjournal/internal/auth"
	"github.com/helsedok/dokjournal/internal/config"
	"github.com/helsedok/dokjournal/internal/convert"
	"github.com/helsedok/dokjournal/internal/documents"
	"github.com/helsedok/dokjournal/internal/journaling"
	"github.com/helsedok/dokjournal/internal/metrics"
	"github.com/helsedok/dokjournal/internal/upstream"
	"github.com/helsedok/dokjournal/pkg/logging"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

// Application holds the wired subsystems of the journaling service.
type Application struct {
	config   *config.Config
	logger   *slog.Logger
	handler  *journaling.Handler
	registry *prometheus.Registry
}

func main() {
	godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Finalize(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger = logging.New(&cfg.Logging)
	app := newApplication(cfg, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      app.routes(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
		IdleTimeout:  cfg.Server.IdleTimeoutDuration(),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Info("shutting down server")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeoutDuration())
		defer cancel()

		shutdownError <- srv.Shutdown(ctx)
	}()

	logger.Info("starting server", "addr", srv.Addr)

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	err = <-shutdownError
	if err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// newApplication wires the journaling pipeline from configuration.
func newApplication(cfg *config.Config, logger *slog.Logger) *Application {
	registry := prometheus.NewRegistry()
	recorder := metrics.NewRecorder(registry)

	tokenClient := auth.NewClient(
		&http.Client{Timeout: cfg.Auth.TimeoutDuration()},
		cfg.Auth.TokenURL,
		cfg.Auth.ClientID,
		cfg.Auth.ClientSecret,
		cfg.Auth.Scopes,
		logger,
	)
	tokens := auth.NewCachedSource(tokenClient)

	fetchCaller := upstream.NewCaller(
		&http.Client{Timeout: cfg.DocumentStore.TimeoutDuration()},
		cfg.DocumentStore.Retry.Policy(),
		recorder,
		logger,
		"fetch-document",
	)
	fetcher := documents.NewFetcher(fetchCaller, tokens, cfg.DocumentStore.MaxDocumentSizeBytes(), logger)

	scaler := convert.NewScaler(logger)
	converter := convert.NewImage2PDF(scaler, logger)
	classifier := documents.NewClassifier(logger)
	normalizer := documents.NewNormalizer(
		fetcher,
		classifier,
		converter,
		recorder,
		cfg.DocumentStore.MaxParallelFetches,
		logger,
	)

	submitCaller := upstream.NewCaller(
		&http.Client{Timeout: cfg.Archive.TimeoutDuration()},
		cfg.Archive.Retry.Policy(),
		recorder,
		logger,
		"submit-journal-post",
	)
	gateway := journaling.NewGateway(submitCaller, tokens, cfg.Archive.BaseURL, logger)

	builder := journaling.NewBuilder(cfg.Journaling.Title, cfg.Journaling.Channel)
	service := journaling.NewService(
		normalizer,
		builder,
		gateway,
		cfg.Journaling.TypeReference(),
		cfg.Journaling.SourceSystem,
		*cfg.Journaling.FinalizeImmediately,
		logger,
	)

	return &Application{
		config:   cfg,
		logger:   logger,
		handler:  journaling.NewHandler(service, logger),
		registry: registry,
	}
}
