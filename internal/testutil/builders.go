package testutil

import (
	"fmt"

	"github.com/target/chat-relay/internal/domain/chat"
)

// ConversationBuilder provides a fluent interface for building turn sequences for tests.
type ConversationBuilder struct {
	turns []chat.Turn
}

// NewConversation starts an empty builder.
func NewConversation() *ConversationBuilder {
	return &ConversationBuilder{}
}

// User appends a user turn.
func (b *ConversationBuilder) User(text string) *ConversationBuilder {
	b.turns = append(b.turns, chat.Turn{Role: chat.RoleUser, Text: text})
	return b
}

// Assistant appends an assistant turn.
func (b *ConversationBuilder) Assistant(text string) *ConversationBuilder {
	b.turns = append(b.turns, chat.Turn{Role: chat.RoleAssistant, Text: text})
	return b
}

// Exchanges appends n alternating user/assistant turns labelled "turn-<i>".
func (b *ConversationBuilder) Exchanges(n int) *ConversationBuilder {
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			b.User(fmt.Sprintf("turn-%d", i))
		} else {
			b.Assistant(fmt.Sprintf("turn-%d", i))
		}
	}
	return b
}

// Build returns a copy of the accumulated turns.
func (b *ConversationBuilder) Build() []chat.Turn {
	return append([]chat.Turn(nil), b.turns...)
}
