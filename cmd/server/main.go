package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pbd/internal/app"
	"pbd/internal/platform/config"
	"pbd/internal/platform/logger"
)

// main loads config, wires the broker and serves until SIGINT or SIGTERM.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		logger.New("error").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	log.Info("initializing privacy broker",
		"addr", cfg.Addr,
		"env", cfg.Env,
		"policy", cfg.PolicyBaseURL(),
		"issuer", cfg.IssuerBaseURL(),
		"collector", cfg.CollectorAddr,
		"authentication_enabled", cfg.AuthenticationEnabled,
		"simulator", cfg.Simulator,
	)
	if !cfg.AuthenticationEnabled {
		log.Warn("remote authorization disabled; every capability request is granted")
	}

	a := app.New(cfg, app.WithLogger(log))
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           a.Handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      45 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	if err := a.Close(); err != nil {
		log.Error("relay drain failed", "error", err)
	}

	log.Info("server stopped")
}
