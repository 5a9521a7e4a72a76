package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/chat-relay/internal/domain/chat"
)

func TestEventStream_FramesEvents(t *testing.T) {
	rec := httptest.NewRecorder()
	s := startEventStream(rec, 0)

	require.NoError(t, s.Send(chat.Delta("")))
	require.NoError(t, s.Send(chat.Delta("a \"quoted\"\nline")))
	require.NoError(t, s.Send(chat.Failure("nope")))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"data: {\"type\":\"delta\",\"text\":\"\"}\n\n"+
			"data: {\"type\":\"delta\",\"text\":\"a \\\"quoted\\\"\\nline\"}\n\n"+
			"data: {\"type\":\"error\",\"message\":\"nope\"}\n\n",
		rec.Body.String())
}

// failingWriter accepts headers but fails every body write, like a closed connection.
type failingWriter struct {
	*httptest.ResponseRecorder
}

func (f failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestEventStream_WriteFailure(t *testing.T) {
	s := startEventStream(failingWriter{httptest.NewRecorder()}, 0)
	err := s.Send(chat.Done())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken pipe")
}

// deadlineRecorder records write deadline changes.
type deadlineRecorder struct {
	*httptest.ResponseRecorder
	deadlines int
}

func (d *deadlineRecorder) SetWriteDeadline(time.Time) error {
	d.deadlines++
	return nil
}

func TestEventStream_ExtendsWriteDeadline(t *testing.T) {
	w := &deadlineRecorder{ResponseRecorder: httptest.NewRecorder()}
	s := startEventStream(w, time.Minute)
	require.NoError(t, s.Send(chat.Done()))
	assert.Equal(t, 2, w.deadlines)
}
