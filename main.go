package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"productapi/internal/config"
	"productapi/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := telemetry.NewLogger(os.Stdout, cfg.App.LogLevel, cfg.Telemetry.ServiceName, cfg.App.Env)
	slog.SetDefault(logger)

	ctx := context.Background()
	app, err := NewApp(ctx, cfg, logger, os.Stdout)
	if err != nil {
		logger.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.App.SeedData {
		if err := app.Seed(ctx); err != nil {
			logger.Warn("Failed to seed products", slog.String("error", err.Error()))
		}
	}

	if err := app.StartConsumer(); err != nil {
		logger.Warn("Failed to start RabbitMQ consumer", slog.String("error", err.Error()))
	}

	go func() {
		logger.Info("Starting server", slog.String("port", cfg.App.Port))
		if err := app.Fiber.Listen(cfg.App.Port); err != nil {
			logger.Error("Server failed to start", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Fiber.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Error during Fiber shutdown", slog.String("error", err.Error()))
	}
	if err := app.Close(shutdownCtx); err != nil {
		logger.Error("Error releasing resources", slog.String("error", err.Error()))
	}
	logger.Info("Server gracefully stopped")
}
