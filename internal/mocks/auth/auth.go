// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	domainauth "github.com/target/chat-relay/internal/domain/auth"
	apperrors "github.com/target/chat-relay/internal/errors"
	"github.com/target/chat-relay/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityVerifier = (*MockIdentityVerifier)(nil)
	_ ports.CredentialCodec  = (*MemoryCredentialCodec)(nil)
)

// MockIdentityVerifier maps known tokens to identities; every other token is rejected as an
// invalid identity token.
type MockIdentityVerifier struct {
	VerifyFunc func(ctx context.Context, token string) (domainauth.Identity, error)

	mu     sync.Mutex
	tokens map[string]domainauth.Identity
	calls  int
}

// NewMockIdentityVerifier creates an empty verifier.
func NewMockIdentityVerifier() *MockIdentityVerifier {
	return &MockIdentityVerifier{tokens: make(map[string]domainauth.Identity)}
}

// Accept registers token as a valid credential for identity.
func (m *MockIdentityVerifier) Accept(token string, identity domainauth.Identity) *MockIdentityVerifier {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tokens == nil {
		m.tokens = make(map[string]domainauth.Identity)
	}
	m.tokens[token] = identity
	return m
}

func (m *MockIdentityVerifier) Verify(ctx context.Context, token string) (domainauth.Identity, error) {
	m.mu.Lock()
	m.calls++
	id, ok := m.tokens[token]
	m.mu.Unlock()

	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, token)
	}
	if !ok {
		return domainauth.Identity{}, apperrors.Wrap(
			errors.New("unknown test token"), apperrors.ErrCodeInvalidIdentityToken, "Invalid Google credential")
	}
	return id, nil
}

// Calls reports how many times Verify ran.
func (m *MockIdentityVerifier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MemoryCredentialCodec issues opaque credentials backed by an in-memory map.
// It is useful where a test needs to control expiry without signing.
type MemoryCredentialCodec struct {
	TTL time.Duration
	Now func() time.Time

	mu       sync.Mutex
	next     int
	sessions map[string]domainauth.Session
}

// NewMemoryCredentialCodec creates a codec issuing credentials valid for ttl.
func NewMemoryCredentialCodec(ttl time.Duration) *MemoryCredentialCodec {
	return &MemoryCredentialCodec{TTL: ttl, sessions: make(map[string]domainauth.Session)}
}

func (c *MemoryCredentialCodec) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *MemoryCredentialCodec) Issue(identity domainauth.Identity) (string, time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sessions == nil {
		c.sessions = make(map[string]domainauth.Session)
	}
	c.next++
	token := "cred-" + strconv.Itoa(c.next) + "-" + identity.Email
	exp := c.now().Add(c.TTL)
	c.sessions[token] = domainauth.Session{Identity: identity, ExpiresAt: exp}
	return token, exp, nil
}

func (c *MemoryCredentialCodec) Verify(token string) (domainauth.Session, error) {
	if token == "" {
		return domainauth.Session{}, errors.New("credential absent")
	}
	c.mu.Lock()
	sess, ok := c.sessions[token]
	c.mu.Unlock()
	if !ok {
		return domainauth.Session{}, errors.New("credential unknown")
	}
	if !c.now().Before(sess.ExpiresAt) {
		return domainauth.Session{}, errors.New("credential expired")
	}
	return sess, nil
}
