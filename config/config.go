package config

import (
	"errors"
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: Authentication and session credential configuration
//   - http.go: HTTP server configuration
//   - upstream.go: Generator (Gemini) configuration
//   - observability.go: Metrics configuration
type AppConfig struct {
	// IsDev controls development mode behavior (text logs, debug level).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Production marks a production deployment; session cookies are then sent with Secure.
	// VERCEL_ENV=production is honored as well.
	Production bool `env:"PRODUCTION" envDefault:"false"`

	// Authentication configuration
	Auth AuthConfig

	// HTTP server configuration
	HTTP HTTPConfig

	// Upstream generator configuration
	Upstream UpstreamConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Auth.Sanitize()
	c.Upstream.Sanitize()
	c.Observability.Sanitize()

	c.detectDevMode()
	c.detectProduction()
}

// Validate reports configuration the process cannot start with. Call it after Sanitize.
// A missing upstream API key is not an error; chat requests then fail with 503.
func (c *AppConfig) Validate() error {
	return errors.Join(c.Auth.Validate())
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

func (c *AppConfig) detectProduction() {
	if !c.Production {
		c.Production = strings.EqualFold(os.Getenv("VERCEL_ENV"), "production")
	}
}
