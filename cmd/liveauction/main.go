package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/efreitasn/liveauction/internal/config"
	"github.com/efreitasn/liveauction/internal/engine"
	"github.com/efreitasn/liveauction/internal/handler"
	"github.com/efreitasn/liveauction/internal/service"
	"github.com/efreitasn/liveauction/internal/store"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up slog logger with configured level.
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Instantiate stores.
	auctionStore := store.NewAuctionStore()
	teamStore := store.NewTeamStore()
	playerStore := store.NewPlayerStore()
	saleStore := store.NewSaleStore()
	webhookStore := store.NewWebhookStore()

	// Engine.
	eng := engine.NewEngine(
		engine.NewRegistry(),
		auctionStore,
		teamStore,
		playerStore,
		saleStore,
		cfg.DefaultBidWindow,
	)

	// Services (webhook first, needed by the live service and the sweeper).
	webhookSvc := service.NewWebhookService(webhookStore, auctionStore, cfg.WebhookTimeout, logger)
	regSvc := service.NewRegistrationService(auctionStore, teamStore, playerStore)
	liveSvc := service.NewLiveService(eng, teamStore, playerStore, webhookSvc, logger, cfg.QueuePeekLimit)
	statsSvc := service.NewStatsService(eng, auctionStore, teamStore, playerStore, saleStore)

	// Router.
	router := handler.NewRouter(regSvc, liveSvc, statsSvc, webhookSvc, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Expired bid windows are closed by the auctioneer unless auto-close
	// is on.
	if cfg.AutoClose {
		sweeper := engine.NewSweeper(cfg.AutoCloseInterval, eng, webhookSvc, logger)
		sweeper.Start(ctx)
		logger.Info("auto-close enabled", slog.Duration("interval", cfg.AutoCloseInterval))
	}

	// Configure HTTP server.
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start HTTP server in a goroutine.
	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.Duration("default_bid_window", cfg.DefaultBidWindow),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	// Graceful shutdown: stop HTTP server, cancel context (stops the sweeper).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	cancel()

	logger.Info("server stopped")
}
