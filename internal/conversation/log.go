package conversation

import (
	"sync"
	"time"
)

// Origin identifies who wrote a message.
type Origin string

const (
	OriginUser      Origin = "user"
	OriginAssistant Origin = "assistant"
)

// ChatMessage is one entry of the conversation.
type ChatMessage struct {
	Origin      Origin    `json:"origin"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	Suggestions []string  `json:"suggestions,omitempty"`
	Action      string    `json:"action,omitempty"`
}

// Log is an append-only message history, safe for concurrent use.
type Log struct {
	mu       sync.RWMutex
	messages []ChatMessage
}

func (l *Log) Append(m ChatMessage) {
	m.Suggestions = append([]string(nil), m.Suggestions...)
	l.mu.Lock()
	l.messages = append(l.messages, m)
	l.mu.Unlock()
}

// Messages returns a copy of the history in insertion order.
func (l *Log) Messages() []ChatMessage {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]ChatMessage, len(l.messages))
	copy(out, l.messages)
	return out
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}
