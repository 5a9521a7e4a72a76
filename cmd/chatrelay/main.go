package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/target/chat-relay/config"
	"github.com/target/chat-relay/internal/bootstrap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	logger := bootstrap.InitLogger(false)
	err := run(ctx, logger)
	stop()
	if err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.IsDev {
		logger = bootstrap.InitLogger(true)
	}

	logStartupInfo(ctx, logger, &cfg)

	return bootstrap.Run(ctx, &cfg, logger)
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting chat relay",
		"addr", cfg.HTTP.Addr,
		"auth_enabled", cfg.Auth.Enabled,
		"identity_mode", cfg.Auth.Mode,
		"model", cfg.Upstream.Model,
		"upstream_configured", cfg.Upstream.HasAPIKey(),
		"static_dir", cfg.HTTP.StaticDir,
		"production", cfg.Production,
		"dev", cfg.IsDev)
}
