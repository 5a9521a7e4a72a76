package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// IdentityMode selects how login ID tokens are verified.
type IdentityMode string

const (
	// IdentityModeGoogle verifies Google ID tokens against Google's published keys.
	IdentityModeGoogle IdentityMode = "google"
	// IdentityModeMock accepts any credential as the configured dev identity (development only).
	IdentityModeMock IdentityMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for IdentityMode.
func (m *IdentityMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "google", "mock":
		*m = IdentityMode(v)
		return nil
	default:
		return fmt.Errorf("invalid IdentityMode: %q (valid options: google, mock)", v)
	}
}

const (
	defaultSessionTTL    = 7 * 24 * time.Hour
	defaultVerifyTimeout = 10 * time.Second
)

// GoogleConfig contains the Google Identity Services settings.
type GoogleConfig struct {
	ClientID      string        `env:"CLIENT_ID"`
	Issuer        string        `env:"ISSUER"         envDefault:"https://accounts.google.com"`
	JWKSURL       string        `env:"JWKS_URL"       envDefault:"https://www.googleapis.com/oauth2/v3/certs"`
	VerifyTimeout time.Duration `env:"VERIFY_TIMEOUT" envDefault:"10s"`
	// AllowUnverifiedEmail accepts ID tokens whose email_verified claim is false.
	AllowUnverifiedEmail bool `env:"ALLOW_UNVERIFIED_EMAIL" envDefault:"false"`
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_IDENTITY_MODE=mock for development and testing.
type DevAuthConfig struct {
	Subject string `env:"SUBJECT"`
	Email   string `env:"EMAIL"   envDefault:"dev@example.com"`
	Name    string `env:"NAME"    envDefault:"Dev User"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Enabled turns the login gate on. With it off every chat request is served anonymously.
	Enabled bool `env:"AUTH_ENABLED" envDefault:"true"`

	// Mode determines which identity verifier to use.
	Mode IdentityMode `env:"AUTH_IDENTITY_MODE" envDefault:"google"`

	// JWTSecret signs session credentials (HS256).
	JWTSecret string `env:"JWT_SECRET"`

	// SessionTTL is the lifetime of a session credential and its cookie.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"168h"`

	// AllowedEmails is a comma-separated list of addresses allowed to log in.
	// Empty means every verified Google account is allowed.
	AllowedEmails string `env:"ALLOWED_EMAILS"`

	// Google configuration (used when Mode=google).
	Google GoogleConfig `envPrefix:"GOOGLE_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`
}

// Sanitize trims values and restores defaults for non-positive durations.
func (a *AuthConfig) Sanitize() {
	a.JWTSecret = strings.TrimSpace(a.JWTSecret)
	a.Google.ClientID = strings.TrimSpace(a.Google.ClientID)
	a.DevAuth.Email = strings.TrimSpace(a.DevAuth.Email)
	if a.Mode == "" {
		a.Mode = IdentityModeGoogle
	}
	if a.SessionTTL <= 0 {
		a.SessionTTL = defaultSessionTTL
	}
	if a.Google.VerifyTimeout <= 0 {
		a.Google.VerifyTimeout = defaultVerifyTimeout
	}
}

// Validate reports missing settings required by the enabled login flow.
func (a *AuthConfig) Validate() error {
	if !a.Enabled {
		return nil
	}
	var errs []error
	if a.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required when AUTH_ENABLED=true"))
	}
	switch a.Mode {
	case IdentityModeGoogle:
		if a.Google.ClientID == "" {
			errs = append(errs, errors.New("GOOGLE_CLIENT_ID is required when AUTH_IDENTITY_MODE=google"))
		}
	case IdentityModeMock:
		if a.DevAuth.Email == "" {
			errs = append(errs, errors.New("DEV_AUTH_EMAIL is required when AUTH_IDENTITY_MODE=mock"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUTH_IDENTITY_MODE %q", a.Mode))
	}
	return errors.Join(errs...)
}
