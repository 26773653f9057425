package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"strideflow/apps/backend/internal/app"
	"strideflow/apps/backend/internal/config"
	"strideflow/apps/backend/internal/logger"
)

func main() {
	base := slog.NewJSONHandler(os.Stdout, nil)
	slog.SetDefault(slog.New(logger.NewContextHandler(base)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer deps.DB.Close()
	defer deps.NSQProducer.Stop()

	a, err := app.New(cfg, deps.DB, deps.Completer, deps.NSQProducer, slog.Default())
	if err != nil {
		slog.Error("failed to build app", "error", err)
		os.Exit(1)
	}

	if err := a.Run(ctx); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
