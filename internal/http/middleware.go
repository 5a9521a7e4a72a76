package httpx

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/target/chat-relay/internal/adapters/sessiontoken"
	domainauth "github.com/target/chat-relay/internal/domain/auth"
	"github.com/target/chat-relay/internal/observability/logctx"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLen = 128

// RequestID returns a middleware that assigns every request an id, echoes it in the response
// and attaches it to the context for logging. A well-formed incoming id is reused.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
			if id == "" || len(id) > maxRequestIDLen || strings.ContainsAny(id, "\r\n") {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)
			ctx := logctx.WithRequestData(r.Context(), &logctx.RequestData{
				RequestID:  id,
				Method:     r.Method,
				Path:       r.URL.Path,
				RemoteAddr: r.RemoteAddr,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w}
			next.ServeHTTP(ww, r)
			logger.InfoContext(r.Context(), "http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int64("bytes", ww.bytes),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// respWriter records the status and size of a response. It forwards Flush and exposes the
// wrapped writer through Unwrap so http.ResponseController keeps working for streams.
type respWriter struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (w *respWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *respWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += int64(n)
	return n, err
}

func (w *respWriter) Flush() {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *respWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Status returns the status sent so far, or 200 when nothing was written explicitly.
func (w *respWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func (w *respWriter) wroteHeader() bool { return w.status != 0 }

// Recover returns a middleware that recovers from panics and logs them. A 500 is written only
// when the response has not started; a panicking stream is simply cut off.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := &respWriter{ResponseWriter: w}
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.ErrorContext(r.Context(), "panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					if !ww.wroteHeader() {
						WriteJSON(ww, http.StatusInternalServerError, errorBody{Error: "Internal server error"})
					}
				}
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// CORS returns a middleware that lets browsers on any origin call the wrapped routes with a
// JSON body. Preflight requests still need a route of their own.
func CORS() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", "*")
			h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			next.ServeHTTP(w, r)
		})
	}
}

// SessionAuthenticator resolves a session credential. With authentication disabled it must
// return an anonymous session for any input.
type SessionAuthenticator interface {
	Authenticate(credential string) (domainauth.Session, error)
}

// RequireSession returns a middleware that admits only requests carrying a valid session
// credential cookie and attaches the session to the request context. Rejections are 401 JSON.
// The allowlist is not consulted here; it is applied once when the credential is issued.
func RequireSession(auth SessionAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := auth.Authenticate(credentialFromRequest(r))
			if err != nil {
				WriteError(w, err)
				return
			}
			ctx := SetSessionInContext(r.Context(), session)
			if !session.Anonymous {
				ctx = logctx.WithUser(ctx, session.Identity.Email)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// credentialFromRequest returns the session cookie value, or "" when absent.
func credentialFromRequest(r *http.Request) string {
	c, err := r.Cookie(sessiontoken.CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
