package models

import "time"

// Conversation statuses
const (
	ConversationActive    = "active"
	ConversationCompleted = "completed"
)

// QuestionIndexCompleted is the sentinel stored in QuestionIndex once the
// interview has run out of sections. It is guaranteed to be larger than any
// real section length, so a completed conversation can never be confused
// with one that simply has not answered yet.
const QuestionIndexCompleted = 1 << 30

// UsageAction identifies a capped book operation.
type UsageAction string

const (
	ActionGenerate   UsageAction = "generate"
	ActionVerify     UsageAction = "verify"
	ActionRegenerate UsageAction = "regenerate"
)

// Conversation is one user's interview / biography project. The current
// section and question index are mutated only by the interview service;
// the usage counters only by the usage gate.
type Conversation struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Title             string    `json:"title"`
	CurrentSection    string    `json:"current_section"`
	QuestionIndex     int       `json:"question_index"`
	Status            string    `json:"status"`
	GenerationCount   int       `json:"generation_count"`
	VerificationCount int       `json:"verification_count"`
	RegenerationCount int       `json:"regeneration_count"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Completed reports whether the interview has run out of questions.
func (c *Conversation) Completed() bool {
	return c.Status == ConversationCompleted
}

// UsageCount returns the counter for the given action.
func (c *Conversation) UsageCount(action UsageAction) int {
	switch action {
	case ActionGenerate:
		return c.GenerationCount
	case ActionVerify:
		return c.VerificationCount
	case ActionRegenerate:
		return c.RegenerationCount
	default:
		return 0
	}
}

// Answer is one immutable user response. The question text is a denormalized
// copy so the recorded wording survives catalog edits. CreatedAt defines the
// chronological order used for book generation.
type Answer struct {
	ID              string    `json:"id"`
	ConversationID  string    `json:"conversation_id"`
	Question        string    `json:"question"`
	Response        string    `json:"response"`
	ImportanceScore *int      `json:"importance_score,omitempty"`
	Tags            []string  `json:"tags,omitempty"`
	FollowUp        *string   `json:"follow_up,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
