package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/target/chat-relay/internal/adapters/sessiontoken"
	domainauth "github.com/target/chat-relay/internal/domain/auth"
	"github.com/target/chat-relay/internal/service"
)

// AuthService defines the auth operations the HTTP layer needs.
type AuthService interface {
	SessionAuthenticator
	Enabled() bool
	ClientID() string
	Login(ctx context.Context, externalToken string) (*service.LoginResult, error)
	Status(credential string) service.Status
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc          AuthService
	Cookies      sessiontoken.CookiePolicy
	MaxBodyBytes int64
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type authConfigResponse struct {
	ClientID    string `json:"clientId"`
	AuthEnabled bool   `json:"authEnabled"`
}

// Config handles GET /auth/config, the settings the browser needs to render sign-in.
func (h *AuthHandlers) Config(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, authConfigResponse{
		ClientID:    h.Svc.ClientID(),
		AuthEnabled: h.Svc.Enabled(),
	})
}

type loginRequest struct {
	Credential string `json:"credential"`
}

type loginResponse struct {
	Success bool            `json:"success"`
	User    domainauth.User `json:"user"`
}

// Login handles POST /auth/login: it exchanges an external ID token for a session cookie.
// No cookie is set unless the whole exchange succeeds.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req, h.MaxBodyBytes) {
		return
	}

	res, err := h.Svc.Login(r.Context(), req.Credential)
	if err != nil {
		WriteError(w, err)
		return
	}

	http.SetCookie(w, toHTTPCookie(h.Cookies.SessionCookie(res.Token, res.TTL)))
	h.logger().InfoContext(r.Context(), "session issued", "email", res.User.Email, "expires_at", res.ExpiresAt)
	WriteJSON(w, http.StatusOK, loginResponse{Success: true, User: res.User})
}

// Logout handles POST /auth/logout by telling the browser to drop the session cookie.
// The credential itself stays valid until it expires.
func (h *AuthHandlers) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, toHTTPCookie(h.Cookies.ClearCookie()))
	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type statusResponse struct {
	Authenticated bool             `json:"authenticated"`
	AuthEnabled   bool             `json:"authEnabled"`
	User          *domainauth.User `json:"user,omitempty"`
}

// Status handles GET /auth/status. It never rejects; an invalid cookie reads as signed out.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	st := h.Svc.Status(credentialFromRequest(r))
	WriteJSON(w, http.StatusOK, statusResponse{
		Authenticated: st.Authenticated,
		AuthEnabled:   st.AuthEnabled,
		User:          st.User,
	})
}

func toHTTPCookie(cs sessiontoken.CookieSpec) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if cs.SameSite == sessiontoken.SameSiteStrict {
		sameSite = http.SameSiteStrictMode
	}
	return &http.Cookie{
		Name:     cs.Name,
		Value:    cs.Value,
		Path:     cs.Path,
		Domain:   cs.Domain,
		MaxAge:   cs.MaxAge,
		HttpOnly: cs.HTTPOnly,
		Secure:   cs.Secure,
		SameSite: sameSite,
	}
}
