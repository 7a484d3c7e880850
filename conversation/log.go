// Package conversation maintains the ordered message log for one chat session.
package conversation

import (
	"fmt"
	"iter"
	"sync"

	"github.com/fxpyramid/chatapp/utils"
)

// Role tags who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleSystem    Role = "system"
	RoleAssistant Role = "assistant"
)

// ParseRole converts a wire or user-supplied string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleSystem, RoleAssistant:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

// Message is a single turn in the conversation. Messages are immutable once
// appended; slice order is both the wire order and the display order.
type Message struct {
	Role    Role   `json:"role" jsonschema:"enum=user,enum=system,enum=assistant"`
	Content string `json:"content"`
}

// Log is the ordered, append-only record of one conversation: the single
// source of truth for what gets persisted, displayed, and sent. Reads are
// safe while a request is in flight; mutation must stay with one writer at
// a time.
type Log struct {
	mu          sync.Mutex
	messages    []Message
	totalTokens int
	counter     TokenCounter
	logger      utils.Logger
}

// NewLog returns an empty Log that sizes its contents with counter.
func NewLog(counter TokenCounter, logger utils.Logger) *Log {
	return &Log{
		messages: []Message{},
		counter:  counter,
		logger:   logger,
	}
}

// Append adds one message to the end of the log.
func (l *Log) Append(msg Message) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tokens := l.counter.Count(msg.Content)
	l.messages = append(l.messages, msg)
	l.totalTokens += tokens
	l.logger.Debug("Appended message", "role", msg.Role, "tokens", tokens, "total_tokens", l.totalTokens)
}

// Snapshot returns a copy of the messages in order.
func (l *Log) Snapshot() []Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]Message(nil), l.messages...)
}

// Replace discards the current contents and installs msgs in their place.
func (l *Log) Replace(msgs []Message) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = append([]Message(nil), msgs...)
	l.totalTokens = 0
	for _, msg := range l.messages {
		l.totalTokens += l.counter.Count(msg.Content)
	}
	l.logger.Debug("Replaced conversation", "messages", len(l.messages), "total_tokens", l.totalTokens)
}

// Render yields one "role: content" line per message. The sequence is
// recomputed on every range, so it always reflects the log at that moment.
func (l *Log) Render() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, msg := range l.Snapshot() {
			if !yield(fmt.Sprintf("%s: %s", msg.Role, msg.Content)) {
				return
			}
		}
	}
}

// Clear empties the log.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = []Message{}
	l.totalTokens = 0
	l.logger.Debug("Cleared conversation")
}

// Len reports the number of messages in the log.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.messages)
}

// TotalTokens reports the estimated token footprint of the whole log.
func (l *Log) TotalTokens() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.totalTokens
}
