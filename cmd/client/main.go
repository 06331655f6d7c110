package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/vedantshetti/infyair-frontend/internal/client/cli"
	"github.com/vedantshetti/infyair-frontend/internal/client/config"
	"github.com/vedantshetti/infyair-frontend/internal/logging"
)

func main() {
	cfg := config.LoadConfig()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		logger.Error(context.Background(), "failed to start", "error", err)
		os.Exit(1)
	}

	if err := app.Run(context.Background()); err != nil {
		logger.Error(context.Background(), "client exited with error", "error", err)
		os.Exit(1)
	}
}
