// Package devauth provides a config-driven IdentityVerifier for local development.
package devauth

import (
	"context"
	"errors"
	"strings"

	domainauth "github.com/target/chat-relay/internal/domain/auth"
	apperrors "github.com/target/chat-relay/internal/errors"
	"github.com/target/chat-relay/internal/ports"
)

// EmailPrefix lets a dev credential pick its own email, e.g. "email:bob@example.com".
const EmailPrefix = "email:"

// Config controls the dev verifier behavior.
// Email is required; Subject defaults to "dev-<email>".
type Config struct {
	Subject string
	Email   string
	Name    string
}

// Verifier implements ports.IdentityVerifier without contacting an identity provider.
// Any non-empty credential verifies as the configured identity, unless it carries
// EmailPrefix, in which case the email after the prefix is asserted instead.
type Verifier struct {
	identity domainauth.Identity
}

var _ ports.IdentityVerifier = (*Verifier)(nil)

// NewVerifier constructs a dev verifier from Config.
func NewVerifier(cfg Config) (*Verifier, error) {
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	sub := cfg.Subject
	if sub == "" {
		sub = "dev-" + cfg.Email
	}
	name := cfg.Name
	if name == "" {
		name = "Dev User"
	}
	return &Verifier{identity: domainauth.Identity{Subject: sub, Email: cfg.Email, Name: name}}, nil
}

// Verify returns the configured identity for any non-empty credential.
func (v *Verifier) Verify(_ context.Context, token string) (domainauth.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domainauth.Identity{}, apperrors.New(apperrors.ErrCodeInvalidIdentityToken, "Invalid Google credential")
	}
	if email, ok := strings.CutPrefix(token, EmailPrefix); ok {
		email = strings.TrimSpace(email)
		if email == "" {
			return domainauth.Identity{}, apperrors.New(apperrors.ErrCodeInvalidIdentityToken, "Invalid Google credential")
		}
		return domainauth.Identity{Subject: "dev-" + email, Email: email, Name: v.identity.Name}, nil
	}
	return v.identity, nil
}
