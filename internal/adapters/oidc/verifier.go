// Package oidc verifies externally issued OpenID Connect ID tokens (Google Identity Services
// by default) and maps their claims onto domain identities.
package oidc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	domainauth "github.com/target/chat-relay/internal/domain/auth"
	apperrors "github.com/target/chat-relay/internal/errors"
	"github.com/target/chat-relay/internal/ports"
	"golang.org/x/oauth2"
)

const (
	// GoogleIssuer is the issuer of Google ID tokens.
	GoogleIssuer = "https://accounts.google.com"
	// GoogleJWKSURL publishes Google's current ID token signing keys.
	GoogleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"

	defaultVerifyTimeout = 10 * time.Second
)

var _ ports.IdentityVerifier = (*Verifier)(nil)

// VerifierConfig holds configuration for the ID token verifier.
type VerifierConfig struct {
	ClientID   string // expected audience
	Issuer     string // defaults to GoogleIssuer
	JWKSURL    string // defaults to GoogleJWKSURL
	Timeout    time.Duration
	HTTPClient *http.Client // Optional, defaults to a client bounded by Timeout

	// KeySet overrides remote key fetching (tests, pinned keys).
	KeySet gooidc.KeySet
	// Now overrides the clock used for expiry checks.
	Now func() time.Time
	// AllowUnverifiedEmail accepts tokens whose email_verified claim is false.
	AllowUnverifiedEmail bool
}

// Verifier implements ports.IdentityVerifier on top of go-oidc.
type Verifier struct {
	verifier             *gooidc.IDTokenVerifier
	timeout              time.Duration
	allowUnverifiedEmail bool
}

// NewVerifier creates a verifier. Signing keys are fetched lazily on first use and cached by
// go-oidc; no network access happens here.
func NewVerifier(cfg VerifierConfig) (*Verifier, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = GoogleIssuer
	}
	jwksURL := cfg.JWKSURL
	if jwksURL == "" {
		jwksURL = GoogleJWKSURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultVerifyTimeout
	}

	keySet := cfg.KeySet
	if keySet == nil {
		httpClient := cfg.HTTPClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: timeout}
		}
		// go-oidc picks the HTTP client up from the context it was constructed with.
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		keySet = gooidc.NewRemoteKeySet(ctx, jwksURL)
	}

	return &Verifier{
		verifier: gooidc.NewVerifier(issuer, keySet, &gooidc.Config{
			ClientID: cfg.ClientID,
			Now:      cfg.Now,
		}),
		timeout:              timeout,
		allowUnverifiedEmail: cfg.AllowUnverifiedEmail,
	}, nil
}

// Verify validates token and returns the identity it asserts. Every failure is reported as an
// InvalidIdentityToken AppError wrapping the cause.
func (v *Verifier) Verify(ctx context.Context, token string) (domainauth.Identity, error) {
	if token == "" {
		return domainauth.Identity{}, invalidToken(errors.New("token is empty"))
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	idTok, err := v.verifier.Verify(ctx, token)
	if err != nil {
		return domainauth.Identity{}, invalidToken(fmt.Errorf("verify id_token: %w", err))
	}

	var claims idTokenClaims
	if claimsErr := idTok.Claims(&claims); claimsErr != nil {
		return domainauth.Identity{}, invalidToken(fmt.Errorf("parse id_token claims: %w", claimsErr))
	}

	identity, err := v.mapClaims(idTok.Subject, claims)
	if err != nil {
		return domainauth.Identity{}, invalidToken(err)
	}
	return identity, nil
}

// idTokenClaims is the subset of Google ID token claims we consume.
type idTokenClaims struct {
	Email         string       `json:"email"`
	EmailVerified *boolOrString `json:"email_verified"`
	Name          string       `json:"name"`
	Picture       string       `json:"picture"`
}

func (v *Verifier) mapClaims(subject string, c idTokenClaims) (domainauth.Identity, error) {
	if subject == "" {
		return domainauth.Identity{}, errors.New("id_token has no subject")
	}
	if c.Email == "" {
		return domainauth.Identity{}, errors.New("id_token has no email claim")
	}
	if !v.allowUnverifiedEmail && c.EmailVerified != nil && !bool(*c.EmailVerified) {
		return domainauth.Identity{}, errors.New("id_token email is not verified")
	}
	return domainauth.Identity{
		Subject: subject,
		Email:   c.Email,
		Name:    c.Name,
		Picture: c.Picture,
	}, nil
}

func invalidToken(cause error) error {
	return apperrors.Wrap(cause, apperrors.ErrCodeInvalidIdentityToken, "Invalid Google credential")
}
