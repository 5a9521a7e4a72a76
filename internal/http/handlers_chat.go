package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/target/chat-relay/internal/domain/chat"
	"github.com/target/chat-relay/internal/service"
)

// ChatRelay opens upstream streams for validated conversations.
type ChatRelay interface {
	Open(ctx context.Context, turns []chat.Turn) (*service.Stream, error)
}

// ChatHandlers serves the streaming chat endpoint.
type ChatHandlers struct {
	Relay        ChatRelay
	MaxBodyBytes int64
	// WriteTimeout bounds each event write; zero keeps the server default.
	WriteTimeout time.Duration
	Logger       *slog.Logger
}

func (h *ChatHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type chatMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
	// Content is accepted as an alias for Text.
	Content string `json:"content"`
}

type chatRequest struct {
	Messages []chatMessage `json:"messages"`
}

func (req chatRequest) turns() []chat.Turn {
	turns := make([]chat.Turn, 0, len(req.Messages))
	for _, m := range req.Messages {
		text := m.Text
		if text == "" {
			text = m.Content
		}
		turns = append(turns, chat.Turn{Role: chat.Role(m.Role), Text: text})
	}
	return turns
}

// Chat handles POST /chat. Validation, configuration and first-chunk failures are answered
// with a JSON error and a matching status; once the first event is ready the response switches
// to an event stream and later failures are reported in-band.
func (h *ChatHandlers) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !DecodeJSON(w, r, &req, h.MaxBodyBytes) {
		return
	}

	stream, err := h.Relay.Open(r.Context(), req.turns())
	if err != nil {
		WriteError(w, err)
		return
	}

	session, _ := GetSessionFromContext(r.Context())
	sink := startEventStream(w, h.WriteTimeout)
	if err := stream.Run(sink); err != nil {
		h.logger().DebugContext(r.Context(), "chat stream closed with error",
			"error", err,
			"email", session.Identity.Email,
			"anonymous", session.Anonymous)
	}
}

// Preflight answers CORS preflight requests for the chat endpoint.
func (h *ChatHandlers) Preflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
