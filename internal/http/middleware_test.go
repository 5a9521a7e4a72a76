package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/chat-relay/internal/domain/auth"
	apperrors "github.com/target/chat-relay/internal/errors"
	"github.com/target/chat-relay/internal/observability/logctx"
)

func TestRequestID_GeneratesAndEchoes(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = logctx.RequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-id-1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "upstream-id-1", seen)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", 500))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Len(t, seen, 36)
}

func TestLogging_RecordsStatusAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logctx.NewHandler(slog.NewJSONHandler(&buf, nil)))
	h := RequestID()(Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})))

	req := httptest.NewRequest(http.MethodPost, "/chat", nil)
	req.Header.Set(RequestIDHeader, "rid-42")
	h.ServeHTTP(httptest.NewRecorder(), req)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "http", rec["msg"])
	assert.EqualValues(t, http.StatusTeapot, rec["status"])
	assert.EqualValues(t, len("short and stout"), rec["bytes"])
	reqGroup, ok := rec["req"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "rid-42", reqGroup["id"])
}

func TestRespWriter_FlushAndUnwrap(t *testing.T) {
	rec := httptest.NewRecorder()
	ww := &respWriter{ResponseWriter: rec}

	rc := http.NewResponseController(ww)
	require.NoError(t, rc.Flush())
	assert.True(t, rec.Flushed)
	assert.Equal(t, http.StatusOK, ww.Status())
	assert.Same(t, http.ResponseWriter(rec), ww.Unwrap())
}

func TestRecover_WritesJSON500BeforeHeaders(t *testing.T) {
	h := Recover(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, map[string]any{"error": "Internal server error"}, decodeBody(t, rec))
}

func TestRecover_LeavesStartedResponseAlone(t *testing.T) {
	h := Recover(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("data: {}\n\n"))
		panic("mid-stream")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "data: {}\n\n", rec.Body.String())
}

type stubAuthenticator struct {
	session domainauth.Session
	err     error
	got     string
}

func (s *stubAuthenticator) Authenticate(credential string) (domainauth.Session, error) {
	s.got = credential
	return s.session, s.err
}

func TestRequireSession(t *testing.T) {
	var inner domainauth.Session
	var reached bool
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		reached = true
		inner, _ = GetSessionFromContext(r.Context())
	})

	t.Run("attaches session", func(t *testing.T) {
		reached = false
		auth := &stubAuthenticator{session: domainauth.Session{Identity: domainauth.Identity{Email: "a@example.com"}}}
		req := httptest.NewRequest(http.MethodPost, "/chat", nil)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: "tok"})
		RequireSession(auth)(next).ServeHTTP(httptest.NewRecorder(), req)

		assert.True(t, reached)
		assert.Equal(t, "tok", auth.got)
		assert.Equal(t, "a@example.com", inner.Identity.Email)
	})

	t.Run("anonymous when disabled", func(t *testing.T) {
		reached = false
		auth := &stubAuthenticator{session: domainauth.AnonymousSession()}
		RequireSession(auth)(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/chat", nil))

		assert.True(t, reached)
		assert.Empty(t, auth.got)
		assert.True(t, inner.Anonymous)
	})

	t.Run("rejects", func(t *testing.T) {
		reached = false
		auth := &stubAuthenticator{err: apperrors.Wrap(errors.New("expired"), apperrors.ErrCodeUnauthenticated, "Unauthorized")}
		rec := httptest.NewRecorder()
		RequireSession(auth)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat", nil))

		assert.False(t, reached)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestGetSessionFromContext_Missing(t *testing.T) {
	_, ok := GetSessionFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}
