package repositories

import (
	"context"

	"legacybook/internal/domain/models"
)

// BookVersionRepository persists generated biography drafts.
type BookVersionRepository interface {
	// Create inserts a new version. The version number is assigned inside
	// the insert (latest for the conversation + 1) and written back to the
	// model, so concurrent regenerations cannot collide on a number read
	// moments earlier.
	Create(ctx context.Context, version *models.BookVersion) error

	// GetByID retrieves a version scoped to the owning user.
	GetByID(ctx context.Context, id, userID string) (*models.BookVersion, error)

	// DemoteFinal moves every FINAL version of the conversation to VERIFIED.
	DemoteFinal(ctx context.Context, conversationID string) error

	// SetStatus updates a single version's status.
	SetStatus(ctx context.Context, id, status string) error
}

// DecisionRepository persists the user's resolutions of verification issues.
type DecisionRepository interface {
	// Upsert records a decision for an issue, replacing any earlier decision
	// for the same (conversation, issue) pair.
	Upsert(ctx context.Context, decision *models.VerificationDecision) error

	// ListByConversation returns the owner's decisions for a conversation.
	ListByConversation(ctx context.Context, conversationID, userID string) ([]models.VerificationDecision, error)
}
