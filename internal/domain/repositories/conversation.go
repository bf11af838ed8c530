package repositories

import (
	"context"

	"legacybook/internal/domain/models"
)

// ConversationRepository persists interview conversations.
//
// The progression writes (AdvanceQuestion, AdvanceSection, MarkCompleted) are
// conditional on the expected prior state so that two racing requests cannot
// both apply the same transition; a stale write returns domain.ErrConflict.
type ConversationRepository interface {
	Create(ctx context.Context, conversation *models.Conversation) error

	// GetByID retrieves a conversation scoped to its owner.
	// Returns domain.ErrNotFound if missing or owned by someone else.
	GetByID(ctx context.Context, id, userID string) (*models.Conversation, error)

	// AdvanceQuestion increments the question index from the expected value.
	AdvanceQuestion(ctx context.Context, id string, fromIndex int) error

	// AdvanceSection moves the conversation to the next section with the
	// index reset to 0, conditional on the expected current section.
	AdvanceSection(ctx context.Context, id, fromSection, toSection string) error

	// MarkCompleted transitions the conversation to the completed status and
	// stores the completion sentinel index, conditional on the expected
	// current section. Completing an already-completed conversation is a
	// no-op for callers (they check status first), so a stale write here is
	// also reported as domain.ErrConflict.
	MarkCompleted(ctx context.Context, id, fromSection string) error

	// IncrementUsage atomically bumps the counter for the given action.
	IncrementUsage(ctx context.Context, id string, action models.UsageAction) error
}

// AnswerRepository persists immutable interview answers.
type AnswerRepository interface {
	Create(ctx context.Context, answer *models.Answer) error

	// ListByConversation returns the owner's answers in chronological order.
	ListByConversation(ctx context.Context, conversationID, userID string) ([]models.Answer, error)
}
