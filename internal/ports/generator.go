package ports

import (
	"context"
	"iter"

	"github.com/target/chat-relay/internal/domain/chat"
)

// Generator streams a model answer for a conversation as ordered text increments.
// The sequence ends after the last increment or after yielding a non-nil error.
// Stopping iteration early must release the upstream call.
type Generator interface {
	Stream(ctx context.Context, conv chat.Conversation) iter.Seq2[string, error]
}
