package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/chat-relay/config"
)

// Run wires every component from cfg and serves HTTP until ctx is canceled or the server
// fails. It blocks for the lifetime of the process.
func Run(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	metricsClient := buildMetrics(logger, cfg.Observability.Metrics)
	defer func() {
		if cerr := metricsClient.Close(); cerr != nil {
			logger.Warn("close statsd client failed", "error", cerr)
		}
	}()
	sink := metricsSink(metricsClient)

	authSvc, err := BuildAuthService(AuthConfig{Auth: cfg.Auth, Metrics: sink, Logger: logger})
	if err != nil {
		return err
	}
	relay, err := BuildChatRelay(ctx, UpstreamConfig{Upstream: cfg.Upstream, Metrics: sink, Logger: logger})
	if err != nil {
		return err
	}

	server, err := NewHTTPServer(&HTTPServerConfig{
		Config: cfg,
		Auth:   authSvc,
		Chat:   relay,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("build http server: %w", err)
	}

	return ServeHTTP(ctx, server, cfg.HTTP.ShutdownTimeout, logger)
}
