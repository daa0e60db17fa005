package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reinai/internal/config"
	"reinai/internal/handlers"
	"reinai/internal/logging"
	"reinai/internal/router"
	"reinai/internal/services"
)

func main() {
	cfg := config.Load()

	logger, logCloser := logging.New(cfg.LogFile, cfg.LogLevel)
	defer logCloser.Close()

	logger.Info("starting ReinAI relay", "env", cfg.Env, "upstream", cfg.UpstreamURL, "default_model", cfg.DefaultModel)
	if config.APIKey() == "" {
		// Not fatal: the key is read per request and may be provided later.
		logger.Warn("OPENROUTER_API_KEY is not set; relay requests will fail until it is")
	}

	// No client timeout: the relay imposes none beyond the HTTP stack.
	openRouter := services.NewOpenRouterService(cfg.UpstreamURL, &http.Client{})
	relayHandler := handlers.NewRelayHandler(openRouter, config.APIKey, cfg.DefaultModel, logger)

	r := router.New(relayHandler, logger, cfg.FrontendURL)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeout)*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("relay ready", "addr", "http://localhost:"+cfg.Port, "endpoint", "/api/openai")

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
