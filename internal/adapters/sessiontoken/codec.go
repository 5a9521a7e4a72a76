// Package sessiontoken signs and verifies the stateless session credential (an HS256 JWT)
// and describes the cookie that carries it.
package sessiontoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	domainauth "github.com/target/chat-relay/internal/domain/auth"
	"github.com/target/chat-relay/internal/ports"
)

// DefaultTTL is the lifetime of a session credential.
const DefaultTTL = 7 * 24 * time.Hour

// DefaultIssuer is written to and required in the iss claim.
const DefaultIssuer = "chat-relay"

var _ ports.CredentialCodec = (*Codec)(nil)

var (
	// ErrCredentialAbsent is returned by Verify for an empty credential.
	ErrCredentialAbsent = errors.New("session credential absent")
	// ErrCredentialInvalid is returned by Verify for any tampered, expired, or foreign credential.
	ErrCredentialInvalid = errors.New("session credential invalid")
	// ErrNoSecret is returned by New and Issue when no signing secret is configured.
	ErrNoSecret = errors.New("session signing secret is not configured")
)

// Claims is the JWT payload of a session credential.
type Claims struct {
	jwt.RegisteredClaims
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// Config controls credential issuance.
type Config struct {
	Secret string
	TTL    time.Duration // DefaultTTL when zero
	Issuer string        // DefaultIssuer when empty
	Now    func() time.Time
}

// Codec implements ports.CredentialCodec.
type Codec struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
	parser *jwt.Parser
}

// New constructs a Codec. An empty secret is a startup-time configuration error.
func New(cfg Config) (*Codec, error) {
	if cfg.Secret == "" {
		return nil, ErrNoSecret
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = DefaultIssuer
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Codec{
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		issuer: issuer,
		now:    now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(now),
		),
	}, nil
}

// TTL returns the credential lifetime.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue signs identity into a credential valid for the configured TTL.
func (c *Codec) Issue(identity domainauth.Identity) (string, time.Time, error) {
	if c == nil || len(c.secret) == 0 {
		return "", time.Time{}, ErrNoSecret
	}
	now := c.now()
	expiresAt := now.Add(c.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Subject,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email:   identity.Email,
		Name:    identity.Name,
		Picture: identity.Picture,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session credential: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature, algorithm, issuer and expiry. It returns ErrCredentialAbsent for an
// empty token and ErrCredentialInvalid (wrapping the cause) for anything else that fails.
func (c *Codec) Verify(token string) (domainauth.Session, error) {
	if token == "" {
		return domainauth.Session{}, ErrCredentialAbsent
	}
	claims := &Claims{}
	parsed, err := c.parser.ParseWithClaims(token, claims, func(_ *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("%w: %w", ErrCredentialInvalid, err)
	}
	if !parsed.Valid {
		return domainauth.Session{}, ErrCredentialInvalid
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return domainauth.Session{
		Identity: domainauth.Identity{
			Subject: claims.Subject,
			Email:   claims.Email,
			Name:    claims.Name,
			Picture: claims.Picture,
		},
		ExpiresAt: expiresAt,
	}, nil
}
