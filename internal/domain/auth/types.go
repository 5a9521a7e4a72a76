// Package auth contains domain-level types for identities, session credentials and the
// email allowlist. It is pure and free of framework/adapter concerns.
package auth

import "time"

// Identity represents the verified principal extracted from an external identity token.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	Subject string // stable provider identifier (sub)
	Email   string
	Name    string
	Picture string
}

// IsZero reports whether the identity carries no claims at all.
func (i Identity) IsZero() bool {
	return i == Identity{}
}

// User is the client-facing projection of an Identity.
type User struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// User returns the client-facing view of the identity.
func (i Identity) User() User {
	return User{Email: i.Email, Name: i.Name, Picture: i.Picture}
}

// Session is an authenticated principal as seen by protected routes.
// Anonymous is true when authentication is globally disabled.
type Session struct {
	Identity  Identity
	ExpiresAt time.Time
	Anonymous bool
}

// AnonymousSession is attached to requests when authentication is disabled.
func AnonymousSession() Session {
	return Session{Anonymous: true}
}
