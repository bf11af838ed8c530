package services

import (
	"context"

	"legacybook/internal/domain/models"
)

// StartConversationRequest creates a new biography project.
type StartConversationRequest struct {
	UserID string `json:"-"`
	Email  string `json:"-"`
	Name   string `json:"-"`
	Title  string `json:"title"`
}

// ConversationService manages conversation lifecycle outside the interview
// progression itself.
type ConversationService interface {
	// Start upserts the owning user and creates a conversation positioned at
	// the first catalog section, index 0.
	Start(ctx context.Context, req *StartConversationRequest) (*models.Conversation, error)

	// Get retrieves a conversation scoped to its owner.
	Get(ctx context.Context, id, userID string) (*models.Conversation, error)
}
