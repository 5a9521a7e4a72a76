package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/target/chat-relay/internal/domain/chat"
)

// fallbackErrorFrame is written when an event cannot be serialized, so the client still sees
// a terminal event.
const fallbackErrorFrame = `{"type":"error","message":"An error occurred"}`

// eventStream writes chat events as a text/event-stream response, one "data:" frame per event,
// flushing after each frame. It implements chat.EventSink.
type eventStream struct {
	w            http.ResponseWriter
	rc           *http.ResponseController
	writeTimeout time.Duration
}

var _ chat.EventSink = (*eventStream)(nil)

// startEventStream commits the 200 response with streaming headers. From here on the status
// code can no longer change. writeTimeout, when positive, is re-armed before every frame so a
// long stream is not cut off by the server's write timeout while a stalled client still is.
func startEventStream(w http.ResponseWriter, writeTimeout time.Duration) *eventStream {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	s := &eventStream{w: w, rc: http.NewResponseController(w), writeTimeout: writeTimeout}
	s.extendDeadline()
	w.WriteHeader(http.StatusOK)
	_ = s.rc.Flush()
	return s
}

// Send writes one event frame.
func (s *eventStream) Send(ev chat.StreamEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		if writeErr := s.writeFrame([]byte(fallbackErrorFrame)); writeErr != nil {
			return errors.Join(err, writeErr)
		}
		return fmt.Errorf("encode stream event: %w", err)
	}
	return s.writeFrame(payload)
}

func (s *eventStream) writeFrame(payload []byte) error {
	s.extendDeadline()
	if _, err := s.w.Write([]byte("data: ")); err != nil {
		return fmt.Errorf("write event prefix: %w", err)
	}
	if _, err := s.w.Write(payload); err != nil {
		return fmt.Errorf("write event payload: %w", err)
	}
	if _, err := s.w.Write([]byte("\n\n")); err != nil {
		return fmt.Errorf("write event terminator: %w", err)
	}
	if err := s.rc.Flush(); err != nil {
		return fmt.Errorf("flush event: %w", err)
	}
	return nil
}

func (s *eventStream) extendDeadline() {
	if s.writeTimeout <= 0 {
		return
	}
	// Recorders and some wrappers cannot set deadlines; streaming still works without one.
	_ = s.rc.SetWriteDeadline(time.Now().Add(s.writeTimeout))
}
