package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/target/chat-relay/internal/adapters/sessiontoken"
	apperrors "github.com/target/chat-relay/internal/errors"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Auth    AuthService
	Chat    ChatRelay
	Cookies sessiontoken.CookiePolicy

	MaxBodyBytes int64
	// StreamWriteTimeout bounds each event-stream write; zero keeps the server default.
	StreamWriteTimeout time.Duration
	// StaticDir, when set, is served at / for the browser client.
	StaticDir string
	Logger    *slog.Logger
}

// routePrefixes lists the mount points of the API. "/api" keeps older clients working.
var routePrefixes = []string{"", "/api"}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Svc:          services.Auth,
		Cookies:      services.Cookies,
		MaxBodyBytes: services.MaxBodyBytes,
		Logger:       services.Logger,
	}
	chatHandlers := &ChatHandlers{
		Relay:        services.Chat,
		MaxBodyBytes: services.MaxBodyBytes,
		WriteTimeout: services.StreamWriteTimeout,
		Logger:       services.Logger,
	}

	for _, prefix := range routePrefixes {
		registerAuthRoutes(mux, prefix, authHandlers)
		registerChatRoutes(mux, prefix, chatHandlers, services.Auth)
	}
	mux.HandleFunc("POST /api/auth/google", authHandlers.Login)
	mux.Handle("/api/auth/google", methodNotAllowed())

	mux.HandleFunc("GET /healthz", healthHandler)
	mux.HandleFunc("HEAD /healthz", healthHandler)
	mux.Handle("/healthz", methodNotAllowed())

	// Registered without a method so every more specific route above wins.
	mux.Handle("/", fallbackHandler(services.StaticDir))

	return mux
}

func registerAuthRoutes(mux *http.ServeMux, prefix string, h *AuthHandlers) {
	routes := []struct {
		method, path string
		handler      http.HandlerFunc
	}{
		{http.MethodGet, "/auth/config", h.Config},
		{http.MethodPost, "/auth/login", h.Login},
		{http.MethodPost, "/auth/logout", h.Logout},
		{http.MethodGet, "/auth/status", h.Status},
	}
	for _, rt := range routes {
		path := prefix + rt.path
		mux.HandleFunc(rt.method+" "+path, rt.handler)
		mux.Handle(path, methodNotAllowed())
	}
}

func registerChatRoutes(mux *http.ServeMux, prefix string, h *ChatHandlers, auth SessionAuthenticator) {
	path := prefix + "/chat"
	cors := CORS()
	mux.Handle("POST "+path, cors(RequireSession(auth)(http.HandlerFunc(h.Chat))))
	mux.Handle("OPTIONS "+path, cors(http.HandlerFunc(h.Preflight)))
	mux.Handle(path, cors(methodNotAllowed()))
}

// fallbackHandler serves the browser client from dir for GET and HEAD, and a JSON 404
// for everything else (or for everything, when dir is empty).
func fallbackHandler(dir string) http.Handler {
	var files http.Handler
	if dir != "" {
		files = http.FileServer(http.Dir(dir))
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if files != nil && (r.Method == http.MethodGet || r.Method == http.MethodHead) {
			files.ServeHTTP(w, r)
			return
		}
		WriteJSON(w, http.StatusNotFound, errorBody{Error: "Not found"})
	})
}

// methodNotAllowed answers with a JSON 405; it is registered without a method so it only
// catches the methods the path has no handler for.
func methodNotAllowed() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, apperrors.MethodNotAllowed())
	})
}
