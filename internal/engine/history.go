package engine

import (
	"fmt"
	"strings"
	"sync"
)

// ConversationContext keeps a bounded per-chat window of recent chat
// lines used as context for generated replies. It is an injected
// component, owned by the application, so tests can run isolated
// instances.
type ConversationContext struct {
	maxLines int

	mutex sync.Mutex
	lines map[int64][]string
}

func NewConversationContext(maxLines int) *ConversationContext {
	return &ConversationContext{
		maxLines: maxLines,
		lines:    make(map[int64][]string),
	}
}

// Record appends a chat line, evicting the oldest once the window is full.
func (c *ConversationContext) Record(chatID int64, author, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()

	lines := append(c.lines[chatID], fmt.Sprintf("%s: %s", author, text))
	if len(lines) > c.maxLines {
		lines = lines[len(lines)-c.maxLines:]
	}
	c.lines[chatID] = lines
}

// Window returns a copy of the chat's recent lines, oldest first.
func (c *ConversationContext) Window(chatID int64) []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return append([]string(nil), c.lines[chatID]...)
}
