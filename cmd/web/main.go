package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"supermarket-dashboard/internal/config"
	"supermarket-dashboard/internal/middleware"
	"supermarket-dashboard/internal/observability"
	"supermarket-dashboard/internal/server"
	"supermarket-dashboard/internal/services"
)

const csvLoadTimeout = 30 * time.Second

func newHandler(dashboard *services.Dashboard, logger *slog.Logger, cfg *config.Config) http.Handler {
	srv := server.NewServer(dashboard, logger)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	return middlewareChain(srv)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"config", cfg,
	)

	ctx, cancel := context.WithTimeout(context.Background(), csvLoadTimeout)
	defer cancel()

	start := time.Now()
	dataset, err := services.NewLoader(logger, cfg.Dataset.CacheDir).Load(ctx, cfg.Dataset.CSVFile)
	if err != nil {
		logger.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}
	logger.Info("dataset loaded",
		"records", dataset.Len(),
		"cities", dataset.Cities(),
		"duration", time.Since(start),
	)

	dashboard := services.NewDashboard(dataset, logger)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(dashboard, logger, cfg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook("dashboard", func(ctx context.Context) error {
		logger.Info("shutting down dashboard", "records", dataset.Len())
		return nil
	})

	logger.Info("starting graceful server")
	if err := gracefulServer.ListenAndServe(context.Background()); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
