package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeBadRequest indicates malformed client input.
	ErrCodeBadRequest ErrorCode = "bad_request"
	// ErrCodeUnauthenticated indicates a missing, invalid or expired session credential.
	ErrCodeUnauthenticated ErrorCode = "unauthenticated"
	// ErrCodeAccessDenied indicates a verified identity that is not on the allowlist.
	ErrCodeAccessDenied ErrorCode = "access_denied"
	// ErrCodeInvalidIdentityToken indicates an external identity token that failed verification.
	ErrCodeInvalidIdentityToken ErrorCode = "invalid_identity_token"
	// ErrCodeMisconfigured indicates a required secret or key is absent at request time.
	ErrCodeMisconfigured ErrorCode = "misconfigured"
	// ErrCodeUpstreamFailure indicates the generation backend failed or disconnected.
	ErrCodeUpstreamFailure ErrorCode = "upstream_failure"
	// ErrCodeMethodNotAllowed indicates the route does not support the request method.
	ErrCodeMethodNotAllowed ErrorCode = "method_not_allowed"
	// ErrCodePayloadTooLarge indicates the request body exceeded the configured limit.
	ErrCodePayloadTooLarge ErrorCode = "payload_too_large"
	// ErrCodeUnsupportedMediaType indicates a request body in a format the route does not accept.
	ErrCodeUnsupportedMediaType ErrorCode = "unsupported_media_type"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "internal"
	// ErrCodeTimeout indicates a timeout occurred.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"
)

// AppError represents a structured application error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message, safe to show to clients
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Detail is an optional longer explanation shown to clients next to Message
	Detail string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail returns a copy of e carrying a client-facing detail message.
func (e *AppError) WithDetail(detail string) *AppError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// New creates an AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// BadRequest creates a new BadRequest error.
func BadRequest(message string) *AppError { return New(ErrCodeBadRequest, message) }

// BadRequestf creates a new BadRequest error with formatted message.
func BadRequestf(format string, args ...any) *AppError {
	return New(ErrCodeBadRequest, fmt.Sprintf(format, args...))
}

// Unauthenticated creates a new Unauthenticated error.
func Unauthenticated(message string) *AppError { return New(ErrCodeUnauthenticated, message) }

// AccessDenied creates a new AccessDenied error.
func AccessDenied(message string) *AppError { return New(ErrCodeAccessDenied, message) }

// Misconfigured creates a new Misconfigured error.
func Misconfigured(message string) *AppError { return New(ErrCodeMisconfigured, message) }

// MethodNotAllowed creates a new MethodNotAllowed error.
func MethodNotAllowed() *AppError { return New(ErrCodeMethodNotAllowed, "Method not allowed") }

// Internal creates a new Internal error.
func Internal(message string) *AppError { return New(ErrCodeInternal, message) }

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsBadRequest checks if an error is a BadRequest error.
func IsBadRequest(err error) bool { return isCode(err, ErrCodeBadRequest) }

// IsUnauthenticated checks if an error is an Unauthenticated error.
func IsUnauthenticated(err error) bool { return isCode(err, ErrCodeUnauthenticated) }

// IsAccessDenied checks if an error is an AccessDenied error.
func IsAccessDenied(err error) bool { return isCode(err, ErrCodeAccessDenied) }

// IsInvalidIdentityToken checks if an error is an InvalidIdentityToken error.
func IsInvalidIdentityToken(err error) bool { return isCode(err, ErrCodeInvalidIdentityToken) }

// IsMisconfigured checks if an error is a Misconfigured error.
func IsMisconfigured(err error) bool { return isCode(err, ErrCodeMisconfigured) }

// IsUpstreamFailure checks if an error is an UpstreamFailure error.
func IsUpstreamFailure(err error) bool { return isCode(err, ErrCodeUpstreamFailure) }

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// PublicMessage returns the client-safe message of an AppError, or fallback for other errors.
func PublicMessage(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}

// PublicDetail returns the client-facing detail of an AppError, if any.
func PublicDetail(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Detail
	}
	return ""
}

// HTTPStatus maps an error to the status code used for synchronous responses.
// Errors that are not AppErrors map to 500.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeBadRequest:
		return http.StatusBadRequest
	case ErrCodeUnauthenticated, ErrCodeInvalidIdentityToken:
		return http.StatusUnauthorized
	case ErrCodeAccessDenied:
		return http.StatusForbidden
	case ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case ErrCodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrCodeUnsupportedMediaType:
		return http.StatusUnsupportedMediaType
	case ErrCodeMisconfigured, ErrCodeTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
