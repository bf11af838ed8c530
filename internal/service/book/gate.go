package book

import (
	"context"

	"legacybook/internal/config"
	"legacybook/internal/domain"
	"legacybook/internal/domain/models"
	"legacybook/internal/domain/repositories"
)

// UsageGate enforces the per-conversation caps on generate/verify/regenerate.
// Check loads the conversation and rejects over-cap actions; Consume bumps
// the counter and is called only after the wrapped action succeeded, so a
// failed generation does not burn quota.
type UsageGate struct {
	conversations repositories.ConversationRepository
}

// NewUsageGate creates a new usage gate.
func NewUsageGate(conversations repositories.ConversationRepository) *UsageGate {
	return &UsageGate{conversations: conversations}
}

// Check returns the loaded conversation when the action is still within its
// cap. The conversation is returned explicitly so callers thread it as a
// parameter instead of re-reading it later.
func (g *UsageGate) Check(ctx context.Context, conversationID, userID string, action models.UsageAction) (*models.Conversation, error) {
	conversation, err := g.conversations.GetByID(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}

	cap := config.UsageCap(action)
	if conversation.UsageCount(action) >= cap {
		return nil, &domain.UsageLimitError{Action: string(action), Limit: cap}
	}

	return conversation, nil
}

// Consume records one successful use of the action.
func (g *UsageGate) Consume(ctx context.Context, conversationID string, action models.UsageAction) error {
	return g.conversations.IncrementUsage(ctx, conversationID, action)
}
