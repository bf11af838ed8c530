package services

import (
	"context"

	"legacybook/internal/domain/models"
)

// DecisionInput is one issue resolution submitted by the user.
type DecisionInput struct {
	IssueID  string `json:"issueId"`
	Decision string `json:"decision"`
}

// SaveDecisionsRequest records the user's resolutions for a conversation.
type SaveDecisionsRequest struct {
	Decisions []DecisionInput `json:"decisions"`
}

// GenerateResult carries a generated chapter that was not persisted.
type GenerateResult struct {
	Chapter string `json:"chapter"`
}

// BookService owns the draft/verify/regenerate/finalize lifecycle. Generate,
// VerifyConversation, VerifyVersion and Regenerate are wrapped by the usage
// gate: the corresponding counter is incremented only after the action
// succeeded, and the (cap+1)-th attempt fails with domain.ErrUsageLimit.
type BookService interface {
	// Generate produces an initial draft from all recorded answers.
	// The draft is returned, not persisted.
	Generate(ctx context.Context, conversationID, userID string) (*GenerateResult, error)

	// VerifyConversation generates a fresh draft and verifies it against the
	// recorded answers.
	VerifyConversation(ctx context.Context, conversationID, userID string) (*models.VerificationReport, error)

	// VerifyVersion verifies a stored version's content.
	VerifyVersion(ctx context.Context, versionID, userID string) (*models.VerificationReport, error)

	// Regenerate re-produces the draft honoring the recorded decisions and
	// persists it as the conversation's next DRAFT version.
	Regenerate(ctx context.Context, conversationID, userID string) (*models.BookVersion, error)

	// SaveDecisions records issue resolutions used by Regenerate.
	SaveDecisions(ctx context.Context, conversationID, userID string, req *SaveDecisionsRequest) error

	// Finalize promotes a version to FINAL, atomically demoting any prior
	// FINAL version of the same conversation to VERIFIED.
	Finalize(ctx context.Context, versionID, userID string) (*models.BookVersion, error)
}
