package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai_sdlc/internal/config"
	"ai_sdlc/internal/httpapi"
	"ai_sdlc/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("failed to load configuration: %v", err)
	}

	ctx := context.Background()
	deps, err := httpapi.Build(ctx, cfg)
	if err != nil {
		logging.Fatalf("failed to build gateway: %v", err)
	}

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      deps.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logging.Infof("gateway listening on :%s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logging.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Errorf("server shutdown: %v", err)
	}
	if err := deps.Close(shutdownCtx); err != nil {
		logging.Errorf("cleanup: %v", err)
	}
	logging.Infof("shutdown complete")
}
