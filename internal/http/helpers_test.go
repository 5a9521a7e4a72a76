package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/target/chat-relay/internal/adapters/sessiontoken"
	domainauth "github.com/target/chat-relay/internal/domain/auth"
	"github.com/target/chat-relay/internal/mocks"
	mockauth "github.com/target/chat-relay/internal/mocks/auth"
	"github.com/target/chat-relay/internal/ports"
	"github.com/target/chat-relay/internal/service"
	"go.uber.org/mock/gomock"
)

var testAlice = domainauth.Identity{
	Subject: "sub-alice",
	Email:   "alice@example.com",
	Name:    "Alice",
	Picture: "https://example.com/alice.png",
}

type fixtureOptions struct {
	AuthDisabled bool
	Allowlist    string
	NoGenerator  bool
	MaxBodyBytes int64
	StaticDir    string
	// Logs receives JSON records at debug level; nil discards them.
	Logs         io.Writer
}

type routerFixture struct {
	handler  http.Handler
	gen      *mocks.MockGenerator
	verifier *mockauth.MockIdentityVerifier
	codec    *sessiontoken.Codec
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRouterFixture(t *testing.T, opts fixtureOptions) *routerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &routerFixture{
		gen:      mocks.NewMockGenerator(ctrl),
		verifier: mockauth.NewMockIdentityVerifier().Accept("good-google-token", testAlice),
	}
	codec, err := sessiontoken.New(sessiontoken.Config{Secret: "router-test-secret"})
	require.NoError(t, err)
	f.codec = codec

	logger := discardLogger()
	if opts.Logs != nil {
		logger = slog.New(slog.NewJSONHandler(opts.Logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	authSvc := service.NewAuthService(service.AuthServiceOptions{
		Enabled:     !opts.AuthDisabled,
		ClientID:    "client-123.apps.googleusercontent.com",
		Verifier:    f.verifier,
		Credentials: codec,
		Allowlist:   domainauth.ParseAllowlist(opts.Allowlist),
		Logger:      logger,
	})
	var gen ports.Generator
	if !opts.NoGenerator {
		gen = f.gen
	}
	relay := service.NewChatRelay(service.ChatRelayOptions{Generator: gen, Logger: logger})

	router := NewRouter(RouterServices{
		Auth:         authSvc,
		Chat:         relay,
		Cookies:      sessiontoken.CookiePolicy{},
		MaxBodyBytes: opts.MaxBodyBytes,
		StaticDir:    opts.StaticDir,
		Logger:       logger,
	})
	f.handler = Recover(logger)(RequestID()(Logging(logger)(router)))
	return f
}

func (f *routerFixture) sessionCookie(t *testing.T) *http.Cookie {
	t.Helper()
	token, _, err := f.codec.Issue(testAlice)
	require.NoError(t, err)
	return &http.Cookie{Name: sessiontoken.CookieName, Value: token}
}

func (f *routerFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func texts(items ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, it := range items {
			if !yield(it, nil) {
				return
			}
		}
	}
}

func chatBody(messages ...map[string]string) map[string]any {
	return map[string]any{"messages": messages}
}

func msg(role, text string) map[string]string {
	return map[string]string{"role": role, "text": text}
}
