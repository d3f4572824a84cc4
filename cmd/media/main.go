package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sir_venger/media_lite/internal/app/mediahttp"
	"github.com/sir_venger/media_lite/internal/config"
	"github.com/sir_venger/media_lite/internal/logger"
	"github.com/sir_venger/media_lite/internal/transport"
)

// main поднимает сервис загрузки медиа и обеспечивает корректное завершение по сигналу.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err = logger.Init(cfg.Log); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := mediahttp.NewServer(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer srv.Close()

	backend, err := transport.New(cfg.Transport, cfg.ListenAddr)
	if err != nil {
		log.Fatal(err)
	}
	srv.Register(backend)

	if err = backend.Start(); err != nil {
		log.Fatal(err)
	}
	logger.Info("media service started",
		"transport", cfg.Transport,
		"media_root", cfg.MediaRoot,
		"inline_threshold", cfg.InlineThreshold.String(),
	)

	<-ctx.Done()
	stop()

	// Сценарий graceful shutdown при получении SIGTERM/SIGINT.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err = backend.Stop(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		return
	}
	logger.Info("media service stopped")
}
