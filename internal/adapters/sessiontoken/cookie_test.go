package sessiontoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCookiePolicy_SessionCookie(t *testing.T) {
	p := CookiePolicy{Domain: "chat.example.com", Secure: true}
	c := p.SessionCookie("tok", DefaultTTL)

	assert.Equal(t, CookieName, c.Name)
	assert.Equal(t, "tok", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, "chat.example.com", c.Domain)
	assert.Equal(t, 7*24*60*60, c.MaxAge)
	assert.True(t, c.HTTPOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, SameSiteLax, c.SameSite)
}

func TestCookiePolicy_InsecureOutsideProduction(t *testing.T) {
	c := CookiePolicy{}.SessionCookie("tok", time.Hour)
	assert.False(t, c.Secure)
	assert.Equal(t, 3600, c.MaxAge)
}

func TestCookiePolicy_ClearCookie(t *testing.T) {
	c := CookiePolicy{Secure: true}.ClearCookie()
	assert.Equal(t, CookieName, c.Name)
	assert.Empty(t, c.Value)
	assert.Negative(t, c.MaxAge)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.HTTPOnly)
	assert.Equal(t, SameSiteLax, c.SameSite)
}
