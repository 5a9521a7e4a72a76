package testutil

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	josejwt "github.com/go-jose/go-jose/v4/jwt"
)

// IDTokenIssuer mints RS256-signed OpenID Connect ID tokens for tests, standing in for an
// identity provider such as Google.
type IDTokenIssuer struct {
	Issuer string
	KeyID  string
	key    *rsa.PrivateKey
	signer jose.Signer
}

// IDTokenClaims describes the token to mint. Zero Expiry means one hour from now.
type IDTokenClaims struct {
	Subject       string
	Audience      string
	Email         string
	EmailVerified *bool
	Name          string
	Picture       string
	IssuedAt      time.Time
	Expiry        time.Time
	Issuer        string // overrides IDTokenIssuer.Issuer when set
}

// NewIDTokenIssuer generates a fresh RSA key pair.
func NewIDTokenIssuer(t TestingTB, issuer string) *IDTokenIssuer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	const kid = "test-key-1"
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.RS256, Key: key},
		(&jose.SignerOptions{}).WithType("JWT").WithHeader("kid", kid),
	)
	if err != nil {
		t.Fatalf("create signer: %v", err)
	}
	return &IDTokenIssuer{Issuer: issuer, KeyID: kid, key: key, signer: signer}
}

// PublicKey returns the verification key.
func (i *IDTokenIssuer) PublicKey() crypto.PublicKey {
	return &i.key.PublicKey
}

// Mint signs the claims into a compact JWT.
func (i *IDTokenIssuer) Mint(t TestingTB, c IDTokenClaims) string {
	t.Helper()
	now := time.Now()
	issuedAt := c.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = now
	}
	expiry := c.Expiry
	if expiry.IsZero() {
		expiry = now.Add(time.Hour)
	}
	issuer := c.Issuer
	if issuer == "" {
		issuer = i.Issuer
	}

	std := josejwt.Claims{
		Issuer:   issuer,
		Subject:  c.Subject,
		Audience: josejwt.Audience{c.Audience},
		IssuedAt: josejwt.NewNumericDate(issuedAt),
		Expiry:   josejwt.NewNumericDate(expiry),
	}
	custom := map[string]any{}
	if c.Email != "" {
		custom["email"] = c.Email
	}
	if c.EmailVerified != nil {
		custom["email_verified"] = *c.EmailVerified
	}
	if c.Name != "" {
		custom["name"] = c.Name
	}
	if c.Picture != "" {
		custom["picture"] = c.Picture
	}

	raw, err := josejwt.Signed(i.signer).Claims(std).Claims(custom).Serialize()
	if err != nil {
		t.Fatalf("sign id token: %v", err)
	}
	return raw
}

// JWKSHandler serves the public key as a JSON Web Key Set.
func (i *IDTokenIssuer) JWKSHandler() http.Handler {
	set := jose.JSONWebKeySet{Keys: []jose.JSONWebKey{{
		Key:       &i.key.PublicKey,
		KeyID:     i.KeyID,
		Algorithm: string(jose.RS256),
		Use:       "sig",
	}}}
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(set)
	})
}

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }
