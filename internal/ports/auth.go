// Package ports defines interfaces (hexagonal ports) for auth and generation behavior.
// Implementations live in internal/adapters; orchestration in internal/service.
package ports

import (
	"context"
	"time"

	domainauth "github.com/target/chat-relay/internal/domain/auth"
)

// IdentityVerifier validates an externally issued identity token (signature chain, issuer,
// audience, expiry) and returns the verified claims.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (domainauth.Identity, error)
}

// CredentialCodec issues and verifies locally signed session credentials.
type CredentialCodec interface {
	// Issue signs the identity into a credential that expires at the returned time.
	Issue(identity domainauth.Identity) (token string, expiresAt time.Time, err error)
	// Verify returns the identity carried by a valid credential.
	Verify(token string) (domainauth.Session, error)
}
