package sessiontoken

import "time"

// CookieName is the name of the cookie carrying the session credential.
const CookieName = "auth_token"

// SameSite mirrors the cookie SameSite attribute values without depending on net/http.
type SameSite string

const (
	SameSiteLax    SameSite = "Lax"
	SameSiteStrict SameSite = "Strict"
)

// CookieSpec is the transport-neutral attribute set for the session cookie.
// MaxAge < 0 means "delete now".
type CookieSpec struct {
	Name     string
	Value    string
	Path     string
	Domain   string
	MaxAge   int
	HTTPOnly bool
	Secure   bool
	SameSite SameSite
}

// CookiePolicy holds the deployment-dependent cookie attributes.
type CookiePolicy struct {
	Domain string
	Secure bool
}

// SessionCookie returns the attributes that store token for ttl.
func (p CookiePolicy) SessionCookie(token string, ttl time.Duration) CookieSpec {
	return CookieSpec{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Domain:   p.Domain,
		MaxAge:   int(ttl / time.Second),
		HTTPOnly: true,
		Secure:   p.Secure,
		SameSite: SameSiteLax,
	}
}

// ClearCookie returns the attributes that delete the session cookie on the client.
// Server-side nothing is revoked; an already-copied credential stays valid until it expires.
func (p CookiePolicy) ClearCookie() CookieSpec {
	return CookieSpec{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Domain:   p.Domain,
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   p.Secure,
		SameSite: SameSiteLax,
	}
}
