package httpx

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/chat-relay/internal/adapters/sessiontoken"
	"github.com/target/chat-relay/internal/service"
	"github.com/target/chat-relay/internal/testutil"
)

func TestLogin_Success(t *testing.T) {
	f := newRouterFixture(t, fixtureOptions{})

	rec := f.do(jsonRequest(t, http.MethodPost, "/auth/login", map[string]string{"credential": "good-google-token"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]any{
		"email":   "alice@example.com",
		"name":    "Alice",
		"picture": "https://example.com/alice.png",
	}, body["user"])

	c := testutil.FindCookie(rec, sessiontoken.CookieName)
	require.NotNil(t, c)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 7*24*60*60, c.MaxAge)
	assert.False(t, c.Secure)

	sess, err := f.codec.Verify(c.Value)
	require.NoError(t, err)
	assert.Equal(t, testAlice, sess.Identity)
}

func TestLogin_GoogleAlias(t *testing.T) {
	f := newRouterFixture(t, fixtureOptions{})

	for _, path := range []string{"/api/auth/google", "/api/auth/login"} {
		rec := f.do(jsonRequest(t, http.MethodPost, path, map[string]string{"credential": "good-google-token"}))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.NotNil(t, testutil.FindCookie(rec, sessiontoken.CookieName), path)
	}
}

func TestLogin_InvalidToken(t *testing.T) {
	f := newRouterFixture(t, fixtureOptions{})

	rec := f.do(jsonRequest(t, http.MethodPost, "/auth/login", map[string]string{"credential": "forged"}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, map[string]any{"error": "Invalid Google credential"}, decodeBody(t, rec))
	assert.Nil(t, testutil.FindCookie(rec, sessiontoken.CookieName))
}

func TestLogin_AccessDenied(t *testing.T) {
	f := newRouterFixture(t, fixtureOptions{Allowlist: "bob@example.com"})

	rec := f.do(jsonRequest(t, http.MethodPost, "/auth/login", map[string]string{"credential": "good-google-token"}))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, map[string]any{
		"error":   "Access denied",
		"message": service.AccessDeniedDetail,
	}, decodeBody(t, rec))
	assert.Nil(t, testutil.FindCookie(rec, sessiontoken.CookieName))
}

func TestLogin_AllowlistMatchesCaseInsensitively(t *testing.T) {
	f := newRouterFixture(t, fixtureOptions{Allowlist: "ALICE@example.com, bob@example.com"})

	rec := f.do(jsonRequest(t, http.MethodPost, "/auth/login", map[string]string{"credential": "good-google-token"}))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin_BadRequests(t *testing.T) {
	f := newRouterFixture(t, fixtureOptions{MaxBodyBytes: 64})

	tests := []struct {
		name   string
		req    func() *http.Request
		status int
		errMsg string
	}{
		{
			name:   "missing credential",
			req:    func() *http.Request { return jsonRequest(t, http.MethodPost, "/auth/login", map[string]string{}) },
			status: http.StatusBadRequest,
			errMsg: "Credential required",
		},
		{
			name: "malformed json",
			req: func() *http.Request {
				r := jsonRequest(t, http.MethodPost, "/auth/login", nil)
				r.Body = http.NoBody
				return r
			},
			status: http.StatusBadRequest,
			errMsg: "Invalid JSON body",
		},
		{
			name: "wrong content type",
			req: func() *http.Request {
				r := jsonRequest(t, http.MethodPost, "/auth/login", map[string]string{"credential": "good-google-token"})
				r.Header.Set("Content-Type", "text/plain")
				return r
			},
			status: http.StatusUnsupportedMediaType,
			errMsg: "Content-Type must be application/json",
		},
		{
			name: "body too large",
			req: func() *http.Request {
				return jsonRequest(t, http.MethodPost, "/auth/login", map[string]string{"credential": strings.Repeat("x", 200)})
			},
			status: http.StatusRequestEntityTooLarge,
			errMsg: "Request body too large",
		},
		{
			name:   "wrong method",
			req:    func() *http.Request { return jsonRequest(t, http.MethodGet, "/auth/login", nil) },
			status: http.StatusMethodNotAllowed,
			errMsg: "Method not allowed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(tt.req())
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.errMsg, decodeBody(t, rec)["error"])
			assert.Nil(t, testutil.FindCookie(rec, sessiontoken.CookieName))
		})
	}
}

func TestLogout_ClearsCookie(t *testing.T) {
	f := newRouterFixture(t, fixtureOptions{})

	req := jsonRequest(t, http.MethodPost, "/auth/logout", nil)
	req.AddCookie(f.sessionCookie(t))
	rec := f.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"success": true}, decodeBody(t, rec))
	c := testutil.FindCookie(rec, sessiontoken.CookieName)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Negative(t, c.MaxAge)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestStatus(t *testing.T) {
	f := newRouterFixture(t, fixtureOptions{})

	rec := f.do(jsonRequest(t, http.MethodGet, "/auth/status", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"authenticated": false, "authEnabled": true}, decodeBody(t, rec))

	req := jsonRequest(t, http.MethodGet, "/api/auth/status", nil)
	req.AddCookie(f.sessionCookie(t))
	rec = f.do(req)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["authenticated"])
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", user["email"])

	req = jsonRequest(t, http.MethodGet, "/auth/status", nil)
	req.AddCookie(&http.Cookie{Name: sessiontoken.CookieName, Value: "tampered"})
	rec = f.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["authenticated"])
}

func TestStatus_AuthDisabled(t *testing.T) {
	f := newRouterFixture(t, fixtureOptions{AuthDisabled: true})

	rec := f.do(jsonRequest(t, http.MethodGet, "/auth/status", nil))
	assert.Equal(t, map[string]any{"authenticated": true, "authEnabled": false}, decodeBody(t, rec))
}

func TestConfig(t *testing.T) {
	f := newRouterFixture(t, fixtureOptions{})

	rec := f.do(jsonRequest(t, http.MethodGet, "/api/auth/config", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{
		"clientId":    "client-123.apps.googleusercontent.com",
		"authEnabled": true,
	}, decodeBody(t, rec))
}

func TestToHTTPCookie_Strict(t *testing.T) {
	c := toHTTPCookie(sessiontoken.CookieSpec{Name: "n", SameSite: sessiontoken.SameSiteStrict, Secure: true})
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.True(t, c.Secure)
}
