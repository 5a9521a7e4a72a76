package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/target/chat-relay/config"
	"github.com/target/chat-relay/internal/adapters/sessiontoken"
	httpx "github.com/target/chat-relay/internal/http"
	"golang.org/x/sync/errgroup"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config *config.AppConfig
	Auth   httpx.AuthService
	Chat   httpx.ChatRelay
	Logger *slog.Logger
}

// NewHTTPServer builds the HTTP server without starting it.
func NewHTTPServer(cfg *HTTPServerConfig) (*http.Server, error) {
	if cfg == nil || cfg.Config == nil {
		return nil, errors.New("http server config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config

	services := httpx.RouterServices{
		Auth: cfg.Auth,
		Chat: cfg.Chat,
		Cookies: sessiontoken.CookiePolicy{
			Domain: appCfg.HTTP.CookieDomain,
			Secure: appCfg.Production,
		},
		MaxBodyBytes:       appCfg.HTTP.MaxBodyBytes,
		StreamWriteTimeout: appCfg.HTTP.StreamWriteTimeout,
		StaticDir:          appCfg.HTTP.StaticDir,
		Logger:             logger,
	}

	return &http.Server{
		Addr:              appCfg.HTTP.Addr,
		Handler:           buildHTTPHandler(logger, services),
		ReadHeaderTimeout: appCfg.HTTP.ReadHeaderTimeout,
		ReadTimeout:       30 * time.Second,
		// No server-wide WriteTimeout: event streams re-arm a per-frame deadline instead.
		IdleTimeout: 120 * time.Second,
		ErrorLog:    slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}, nil
}

// buildHTTPHandler wraps the router. Order: Recover -> RequestID -> Logging -> Router.
func buildHTTPHandler(logger *slog.Logger, services httpx.RouterServices) http.Handler {
	h := httpx.NewRouter(services)
	h = httpx.Logging(logger)(h)
	h = httpx.RequestID()(h)
	h = httpx.Recover(logger)(h)
	return h
}

// ServeHTTP listens on the server address and serves until ctx is canceled, then shuts down
// gracefully. Open streams get shutdownTimeout to finish before connections are closed.
func ServeHTTP(ctx context.Context, server *http.Server, shutdownTimeout time.Duration, logger *slog.Logger) error {
	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", server.Addr, err)
	}
	return serveListener(ctx, server, ln, shutdownTimeout, logger)
}

func serveListener(
	ctx context.Context,
	server *http.Server,
	ln net.Listener,
	shutdownTimeout time.Duration,
	logger *slog.Logger,
) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown incomplete; closing connections", "error", err)
			return errors.Join(fmt.Errorf("shutdown http server: %w", err), server.Close())
		}
		logger.Info("HTTP server stopped")
		return nil
	})

	return g.Wait()
}
