// Package logctx carries per-request data in a context and stamps it onto slog records.
package logctx

import (
	"context"
	"log/slog"
)

// Handler decorates another slog.Handler with the request data found in the record's context.
type Handler struct {
	slog.Handler
}

// NewHandler wraps next.
func NewHandler(next slog.Handler) Handler {
	return Handler{Handler: next}
}

func (h Handler) Handle(ctx context.Context, r slog.Record) error {
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		attrs := []any{
			slog.String("id", rd.RequestID),
			slog.String("method", rd.Method),
			slog.String("path", rd.Path),
		}
		if rd.RemoteAddr != "" {
			attrs = append(attrs, slog.String("remote_addr", rd.RemoteAddr))
		}
		r.AddAttrs(slog.Group("req", attrs...))
	}
	if email, ok := ctx.Value(userKey{}).(string); ok && email != "" {
		r.AddAttrs(slog.String("user", email))
	}
	return h.Handler.Handle(ctx, r)
}

func (h Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return Handler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h Handler) WithGroup(name string) slog.Handler {
	return Handler{Handler: h.Handler.WithGroup(name)}
}

type requestDataKey struct{}

// RequestData identifies the HTTP request a log record belongs to.
type RequestData struct {
	RequestID  string
	Method     string
	Path       string
	RemoteAddr string
}

// WithRequestData returns a child context carrying data.
func WithRequestData(ctx context.Context, data *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, data)
}

// RequestID returns the request id stored in ctx, if any.
func RequestID(ctx context.Context) string {
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd.RequestID
	}
	return ""
}

type userKey struct{}

// WithUser returns a child context whose log records name the signed-in user.
func WithUser(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, userKey{}, email)
}
