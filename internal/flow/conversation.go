// Package flow implements the dialogue state machine that collects a user
// profile and hands it to the recommendation service.
package flow

import (
	"time"

	"github.com/schemebot/schemebot/internal/models"
)

// Conversation holds one session's message history and dialogue state.
type Conversation struct {
	history      []models.Message
	state        models.ConversationState
	startedAt    time.Time
	lastActivity time.Time
}

// NewConversation creates an empty conversation in the greeting state.
func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		state:        models.StateGreeting,
		startedAt:    now,
		lastActivity: now,
	}
}

// AddMessage appends a message to the history and refreshes the activity
// timestamp.
func (c *Conversation) AddMessage(role, content string) {
	c.history = append(c.history, models.Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	c.lastActivity = time.Now()
}

// History returns the full message history.
func (c *Conversation) History() []models.Message {
	return c.history
}

// Recent returns the most recent count messages.
func (c *Conversation) Recent(count int) []models.Message {
	if len(c.history) <= count {
		return c.history
	}
	return c.history[len(c.history)-count:]
}

// LastUserMessage returns the content of the most recent user message.
func (c *Conversation) LastUserMessage() (string, bool) {
	for i := len(c.history) - 1; i >= 0; i-- {
		if c.history[i].Role == models.RoleUser {
			return c.history[i].Content, true
		}
	}
	return "", false
}

// Clear resets the conversation to a fresh greeting state.
func (c *Conversation) Clear() {
	c.history = nil
	c.state = models.StateGreeting
	c.startedAt = time.Now()
	c.lastActivity = time.Now()
}

// State returns the current dialogue state.
func (c *Conversation) State() models.ConversationState {
	return c.state
}

// SetState moves the dialogue to a new state.
func (c *Conversation) SetState(state models.ConversationState) {
	c.state = state
}

// LastActivity returns the time of the most recent message.
func (c *Conversation) LastActivity() time.Time {
	return c.lastActivity
}

// IsExpired reports whether the conversation has been inactive longer than
// the timeout.
func (c *Conversation) IsExpired(timeout time.Duration) bool {
	return time.Since(c.lastActivity) > timeout
}
