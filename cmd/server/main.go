package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aidetector/internal/classifier"
	"aidetector/internal/config"
	"aidetector/internal/hub"
	"aidetector/internal/logging"
	"aidetector/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run owns the full lifecycle so defers fire before the process exits.
func run() error {
	// 1. Configuration & logger
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(cfg.Debug)

	// 2. Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Model host. A failed load is not fatal: the server still
	// comes up so /health can report the degraded state.
	pipe := classifier.New(classifier.Options{
		ModelName:  cfg.ModelName,
		CacheDir:   cfg.ModelCacheDir,
		RuntimeLib: cfg.OnnxRuntimeLib,
		Hub:        hub.NewClient(cfg.ModelHubURL, cfg.HFToken, log),
		Log:        log,
	})
	if err := pipe.Load(ctx); err != nil {
		log.Error("model initialization failed, serving degraded", "error", err)
	}
	defer pipe.Close()

	// 4. HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: server.NewRouter(pipe, cfg.Debug),
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server", "addr", srv.Addr, "model", cfg.ModelName)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 5. Wait for stop or error
	select {
	case <-ctx.Done():
		log.Info("shutting down gracefully")
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	log.Info("server stopped cleanly")
	return nil
}
