package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	domainauth "github.com/target/chat-relay/internal/domain/auth"
	apperrors "github.com/target/chat-relay/internal/errors"
	"github.com/target/chat-relay/internal/observability/metrics"
	"github.com/target/chat-relay/internal/observability/statsd"
	"github.com/target/chat-relay/internal/ports"
)

// AccessDeniedDetail is shown to users whose verified email is not on the allowlist.
const AccessDeniedDetail = "このメールアドレスはアクセスが許可されていません"

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	// Enabled turns authentication on. When false every request is treated as anonymous.
	Enabled     bool
	ClientID    string
	Verifier    ports.IdentityVerifier
	Credentials ports.CredentialCodec
	Allowlist   domainauth.Allowlist
	Metrics     statsd.Sink  // Optional
	Logger      *slog.Logger // Optional
}

// AuthService exchanges external identity tokens for session credentials and answers
// session queries for the auth routes and the session gate.
type AuthService struct {
	enabled     bool
	clientID    string
	verifier    ports.IdentityVerifier
	credentials ports.CredentialCodec
	allowlist   domainauth.Allowlist
	metrics     statsd.Sink
	logger      *slog.Logger
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		enabled:     opts.Enabled,
		clientID:    opts.ClientID,
		verifier:    opts.Verifier,
		credentials: opts.Credentials,
		allowlist:   opts.Allowlist,
		metrics:     opts.Metrics,
		logger:      logger.With("component", "auth_service"),
	}
}

// Enabled reports whether authentication is enforced.
func (s *AuthService) Enabled() bool { return s.enabled }

// ClientID returns the public identity-provider client id for the browser sign-in widget.
func (s *AuthService) ClientID() string { return s.clientID }

// LoginResult contains the credential minted by a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	// TTL is the credential lifetime, rounded to whole seconds for cookie Max-Age.
	TTL  time.Duration
	User domainauth.User
}

// Login verifies the external identity token, applies the allowlist, and issues a session
// credential. Errors are AppErrors: BadRequest for a missing token, InvalidIdentityToken when
// verification fails, AccessDenied for identities outside the allowlist.
func (s *AuthService) Login(ctx context.Context, externalToken string) (*LoginResult, error) {
	start := time.Now()
	res, err := s.login(ctx, externalToken)

	result := metrics.ResultSuccess
	switch {
	case err == nil:
	case apperrors.IsAccessDenied(err), apperrors.IsInvalidIdentityToken(err), apperrors.IsBadRequest(err):
		result = metrics.ResultRejected
	default:
		result = metrics.ResultError
	}
	metrics.EmitLogin(s.metrics, metrics.LoginMetric{Result: result, Duration: time.Since(start), Err: err})
	return res, err
}

func (s *AuthService) login(ctx context.Context, externalToken string) (*LoginResult, error) {
	if strings.TrimSpace(externalToken) == "" {
		return nil, apperrors.BadRequest("Credential required")
	}
	if s.verifier == nil || s.credentials == nil {
		return nil, apperrors.Misconfigured("Authentication is not configured")
	}

	identity, err := s.verifier.Verify(ctx, externalToken)
	if err != nil {
		s.logger.WarnContext(ctx, "identity token rejected", "error", err)
		if apperrors.GetCode(err) == "" {
			err = apperrors.Wrap(err, apperrors.ErrCodeInvalidIdentityToken, "Invalid Google credential")
		}
		return nil, err
	}

	if !s.allowlist.IsAllowed(identity.Email) {
		s.logger.InfoContext(ctx, "login denied by allowlist", "email", identity.Email)
		return nil, apperrors.AccessDenied("Access denied").WithDetail(AccessDeniedDetail)
	}

	issuedAt := time.Now()
	token, expiresAt, err := s.credentials.Issue(identity)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to issue session")
	}

	s.logger.InfoContext(ctx, "login succeeded", "email", identity.Email)
	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		TTL:       expiresAt.Sub(issuedAt).Round(time.Second),
		User:      identity.User(),
	}, nil
}

// Authenticate resolves the session carried by a credential. With authentication disabled it
// returns the anonymous session regardless of the credential. Any other failure is an
// Unauthenticated AppError wrapping the codec error.
func (s *AuthService) Authenticate(credential string) (domainauth.Session, error) {
	if !s.enabled {
		return domainauth.AnonymousSession(), nil
	}
	if s.credentials == nil {
		return domainauth.Session{}, apperrors.Misconfigured("Authentication is not configured")
	}
	sess, err := s.credentials.Verify(credential)
	if err != nil {
		return domainauth.Session{}, apperrors.Wrap(err, apperrors.ErrCodeUnauthenticated, "Unauthorized")
	}
	return sess, nil
}

// Status describes the caller's session for the status route.
type Status struct {
	Authenticated bool
	AuthEnabled   bool
	User          *domainauth.User
}

// Status never fails: an absent or invalid credential simply reports unauthenticated.
func (s *AuthService) Status(credential string) Status {
	if !s.enabled {
		return Status{Authenticated: true, AuthEnabled: false}
	}
	sess, err := s.Authenticate(credential)
	if err != nil {
		return Status{AuthEnabled: true}
	}
	u := sess.Identity.User()
	return Status{Authenticated: true, AuthEnabled: true, User: &u}
}
