package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/proposal-relay/pkg/config"
	"github.com/ekaya-inc/proposal-relay/pkg/crypto"
	"github.com/ekaya-inc/proposal-relay/pkg/handlers"
	"github.com/ekaya-inc/proposal-relay/pkg/llm"
	"github.com/ekaya-inc/proposal-relay/pkg/middleware"
	"github.com/ekaya-inc/proposal-relay/pkg/notify"
	"github.com/ekaya-inc/proposal-relay/pkg/repositories"
	"github.com/ekaya-inc/proposal-relay/pkg/services"
	"github.com/ekaya-inc/proposal-relay/pkg/trello"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Configuration loaded",
		zap.String("version", cfg.Version),
		zap.String("env", cfg.Env),
		zap.String("store", cfg.Store.Backend),
		zap.String("ledger", cfg.Ledger.Strategy),
		zap.String("rating_provider", cfg.Rating.Provider),
		zap.String("rating_model", cfg.Rating.Model),
		zap.Bool("telegram", cfg.Notify.TelegramEnabled))

	handler, cleanup, err := buildHandler(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	server := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting proposal-relay", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// buildHandler creates the shared clients once and wires the HTTP routes.
func buildHandler(ctx context.Context, cfg *config.Config, logger *zap.Logger) (http.Handler, func(), error) {
	codec, err := crypto.NewTokenCodec(cfg.SecretKey)
	if err != nil {
		return nil, nil, err
	}

	stores, err := repositories.Open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}

	llmClient, err := llm.NewFromConfig(cfg.Rating, logger)
	if err != nil {
		stores.Close()
		return nil, nil, fmt.Errorf("failed to create rating client: %w", err)
	}

	var notifier notify.Notifier = notify.NopNotifier{}
	if cfg.Notify.TelegramEnabled {
		notifier = notify.NewTelegramNotifier(cfg.Notify.TelegramBaseURL, nil, logger)
	}

	proposalService := services.NewProposalService(
		stores.Installations,
		codec,
		services.NewCardGate(trello.NewClient(cfg.Trello.BaseURL, nil, logger), logger),
		services.NewRatingService(llmClient, logger),
		services.NewFeedbackLedger(stores.Feedbacks, codec, cfg.Ledger, logger),
		notifier,
		logger,
	)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, stores, logger).RegisterRoutes(mux)
	handlers.NewProposalHandler(proposalService, logger).RegisterRoutes(mux)

	return middleware.RequestLogger(logger)(middleware.CORS(mux)), stores.Close, nil
}
