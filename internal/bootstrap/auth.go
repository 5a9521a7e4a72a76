package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/target/chat-relay/config"
	"github.com/target/chat-relay/internal/adapters/devauth"
	"github.com/target/chat-relay/internal/adapters/oidc"
	"github.com/target/chat-relay/internal/adapters/sessiontoken"
	domainauth "github.com/target/chat-relay/internal/domain/auth"
	"github.com/target/chat-relay/internal/observability/statsd"
	"github.com/target/chat-relay/internal/ports"
	"github.com/target/chat-relay/internal/service"
)

// AuthConfig contains configuration for auth service.
type AuthConfig struct {
	Auth    config.AuthConfig
	Metrics statsd.Sink // Optional
	Logger  *slog.Logger
}

// BuildAuthService creates an auth service based on the configured identity mode.
//
// With authentication enabled every dependency must build. With it disabled the login routes
// are still wired when the configuration allows, so a client can be tested against them, but
// missing settings only leave login answering 503.
func BuildAuthService(cfg AuthConfig) (*service.AuthService, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	verifier, verr := buildVerifier(cfg.Auth)
	codec, cerr := sessiontoken.New(sessiontoken.Config{
		Secret: cfg.Auth.JWTSecret,
		TTL:    cfg.Auth.SessionTTL,
	})

	opts := service.AuthServiceOptions{
		Enabled:   cfg.Auth.Enabled,
		ClientID:  cfg.Auth.Google.ClientID,
		Allowlist: domainauth.ParseAllowlist(cfg.Auth.AllowedEmails),
		Metrics:   cfg.Metrics,
		Logger:    logger,
	}

	switch {
	case verr == nil:
		opts.Verifier = verifier
	case cfg.Auth.Enabled:
		return nil, fmt.Errorf("build identity verifier: %w", verr)
	default:
		logger.Warn("identity verifier not configured; login unavailable", "error", verr)
	}

	switch {
	case cerr == nil:
		opts.Credentials = codec
	case cfg.Auth.Enabled:
		return nil, fmt.Errorf("build session codec: %w", cerr)
	default:
		logger.Warn("session codec not configured; login unavailable", "error", cerr)
	}

	if !cfg.Auth.Enabled {
		logger.Warn("authentication disabled; chat is open to anonymous callers")
	}
	logger.Info("auth configured",
		"enabled", cfg.Auth.Enabled,
		"mode", cfg.Auth.Mode,
		"allowlist_size", opts.Allowlist.Len(),
		"session_ttl", cfg.Auth.SessionTTL)

	return service.NewAuthService(opts), nil
}

// buildVerifier returns the verifier for the configured mode. The concrete value is returned
// through the interface only on success, so a failure never yields a typed nil.
func buildVerifier(cfg config.AuthConfig) (ports.IdentityVerifier, error) {
	switch cfg.Mode {
	case config.IdentityModeMock:
		v, err := devauth.NewVerifier(devauth.Config{
			Subject: cfg.DevAuth.Subject,
			Email:   cfg.DevAuth.Email,
			Name:    cfg.DevAuth.Name,
		})
		if err != nil {
			return nil, err
		}
		return v, nil

	case config.IdentityModeGoogle, "":
		v, err := oidc.NewVerifier(oidc.VerifierConfig{
			ClientID:             cfg.Google.ClientID,
			Issuer:               cfg.Google.Issuer,
			JWKSURL:              cfg.Google.JWKSURL,
			Timeout:              cfg.Google.VerifyTimeout,
			AllowUnverifiedEmail: cfg.Google.AllowUnverifiedEmail,
		})
		if err != nil {
			return nil, err
		}
		return v, nil

	default:
		return nil, fmt.Errorf("unknown identity mode %q", cfg.Mode)
	}
}
