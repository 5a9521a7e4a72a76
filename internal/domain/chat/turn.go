// Package chat holds the conversation and stream-event types used by the relay.
// It is pure and free of transport and provider concerns.
package chat

import (
	"errors"
	"fmt"
	"strings"
)

// Role identifies who produced a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// DefaultHistoryLimit caps how many prior turns are forwarded upstream as context.
const DefaultHistoryLimit = 20

// Turn is a single message in a client-supplied conversation.
type Turn struct {
	Role Role
	Text string
}

// Conversation is a validated request: ordered context followed by the prompt to answer.
type Conversation struct {
	History []Turn
	Prompt  Turn
}

// ErrEmptyConversation is returned when no turns were supplied.
var ErrEmptyConversation = errors.New("messages must be a non-empty array")

// InvalidTurnError reports a malformed turn at a given index.
type InvalidTurnError struct {
	Index  int
	Reason string
}

func (e *InvalidTurnError) Error() string {
	return fmt.Sprintf("messages[%d]: %s", e.Index, e.Reason)
}

// NewConversation validates turns and splits them into context and prompt. Context keeps only
// the most recent historyLimit turns in their original order; historyLimit <= 0 means
// DefaultHistoryLimit.
func NewConversation(turns []Turn, historyLimit int) (Conversation, error) {
	if len(turns) == 0 {
		return Conversation{}, ErrEmptyConversation
	}
	last := len(turns) - 1
	for i, t := range turns {
		if !t.Role.Valid() {
			return Conversation{}, &InvalidTurnError{Index: i, Reason: fmt.Sprintf("unknown role %q", t.Role)}
		}
		if strings.TrimSpace(t.Text) == "" {
			if i == last {
				return Conversation{}, &InvalidTurnError{Index: i, Reason: "prompt text is empty"}
			}
			return Conversation{}, &InvalidTurnError{Index: i, Reason: "history text is empty"}
		}
	}

	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	history := turns[:last]
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}

	return Conversation{
		History: append([]Turn(nil), history...),
		Prompt:  turns[last],
	}, nil
}
