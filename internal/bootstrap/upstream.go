package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/target/chat-relay/config"
	"github.com/target/chat-relay/internal/adapters/gemini"
	"github.com/target/chat-relay/internal/observability/statsd"
	"github.com/target/chat-relay/internal/service"
)

// UpstreamConfig contains configuration for the chat relay.
type UpstreamConfig struct {
	Upstream config.UpstreamConfig
	Metrics  statsd.Sink // Optional
	Logger   *slog.Logger
}

// BuildChatRelay creates the chat relay. A missing API key is not fatal: the relay is built
// without a generator and answers every chat request with 503.
func BuildChatRelay(ctx context.Context, cfg UpstreamConfig) (*service.ChatRelay, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opts := service.ChatRelayOptions{
		HistoryLimit:      cfg.Upstream.HistoryLimit,
		FirstChunkTimeout: cfg.Upstream.FirstChunkTimeout,
		StreamTimeout:     cfg.Upstream.StreamTimeout,
		Metrics:           cfg.Metrics,
		Logger:            logger,
	}

	if !cfg.Upstream.HasAPIKey() {
		logger.Warn("GOOGLE_API_KEY not set; chat requests will fail until it is configured")
		return service.NewChatRelay(opts), nil
	}

	gen, err := gemini.NewGenerator(ctx, gemini.Config{
		APIKey:       cfg.Upstream.APIKey,
		Model:        cfg.Upstream.Model,
		SystemPrompt: cfg.Upstream.SystemPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("build gemini generator: %w", err)
	}
	opts.Generator = gen
	logger.Info("upstream configured", "model", gen.Model(), "history_limit", cfg.Upstream.HistoryLimit)
	return service.NewChatRelay(opts), nil
}
