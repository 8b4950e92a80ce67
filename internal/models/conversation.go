// Package models defines conversation state structures for SchemeBot.
package models

import "time"

// ConversationState represents the dialogue controller's current phase.
type ConversationState string

const (
	StateGreeting       ConversationState = "GREETING"
	StateCollectingInfo ConversationState = "COLLECTING_INFO"
	StateRecommending   ConversationState = "RECOMMENDING"
	StateCompleted      ConversationState = "COMPLETED"
)

// Intent is the closed set of labels the classification capability may return.
type Intent string

const (
	IntentGreeting               Intent = "greeting"
	IntentProvideInfo            Intent = "provide_info"
	IntentRequestRecommendations Intent = "request_recommendations"
	IntentRestart                Intent = "restart"
	IntentAskSpecificScheme      Intent = "ask_specific_scheme"
	IntentOther                  Intent = "other"
)

// ParseIntent coerces an arbitrary label to a known intent. Unrecognized
// labels map to IntentOther so the state machine never sees an open set.
func ParseIntent(label string) Intent {
	switch Intent(label) {
	case IntentGreeting, IntentProvideInfo, IntentRequestRecommendations,
		IntentRestart, IntentAskSpecificScheme, IntentOther:
		return Intent(label)
	}
	return IntentOther
}

// Message roles in conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single entry in the conversation history.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
