// Package testutil provides testing utilities and helpers for the chat relay.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
)

// TestingTB is a minimal interface for testing.T and testing.B.
type TestingTB interface {
	Helper()
	Skip(args ...interface{})
	Skipf(format string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
	Logf(format string, args ...interface{})
}

// FindCookie returns the named Set-Cookie from a recorded response, or nil.
func FindCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// SSEData splits an event-stream body into the payloads of its "data:" lines, in order.
func SSEData(body string) []string {
	var out []string
	for _, frame := range strings.Split(body, "\n\n") {
		for _, line := range strings.Split(frame, "\n") {
			if payload, ok := strings.CutPrefix(line, "data: "); ok {
				out = append(out, payload)
			}
		}
	}
	return out
}
