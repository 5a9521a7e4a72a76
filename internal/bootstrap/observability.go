package bootstrap

import (
	"log/slog"

	"github.com/target/chat-relay/config"
	"github.com/target/chat-relay/internal/observability/statsd"
)

// buildMetrics returns the StatsD sink, or nil when metrics are disabled or the client cannot
// be created. Metrics never block startup.
func buildMetrics(logger *slog.Logger, cfg config.ObservabilityMetricsConfig) *statsd.Client {
	if !cfg.IsEnabled() {
		return nil
	}
	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return nil
	}
	logger.Info("statsd metrics enabled", "address", cfg.StatsdAddress)
	return client
}

// metricsSink converts a possibly nil client into a Sink without creating a typed nil.
func metricsSink(c *statsd.Client) statsd.Sink {
	if c == nil {
		return nil
	}
	return c
}
