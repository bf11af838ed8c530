package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"legacybook/internal/catalog"
	"legacybook/internal/config"
	"legacybook/internal/domain"
	"legacybook/internal/domain/models"
	"legacybook/internal/domain/repositories"
	"legacybook/internal/domain/services"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const defaultTitle = "My Legacy Book"

// conversationService implements the ConversationService interface
type conversationService struct {
	users         repositories.UserRepository
	conversations repositories.ConversationRepository
	catalog       *catalog.Catalog
	logger        *slog.Logger
}

// NewService creates a new conversation service
func NewService(
	users repositories.UserRepository,
	conversations repositories.ConversationRepository,
	cat *catalog.Catalog,
	logger *slog.Logger,
) services.ConversationService {
	return &conversationService{
		users:         users,
		conversations: conversations,
		catalog:       cat,
		logger:        logger,
	}
}

// Start upserts the owning user and creates a conversation positioned at the
// first catalog section.
func (s *conversationService) Start(ctx context.Context, req *services.StartConversationRequest) (*models.Conversation, error) {
	if err := s.validateStartRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	name := req.Name
	if name == "" {
		name = "User"
	}
	user := &models.User{
		ID:    req.UserID,
		Email: req.Email,
		Name:  name,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = defaultTitle
	}

	conversation := &models.Conversation{
		UserID:         user.ID,
		Title:          title,
		CurrentSection: s.catalog.FirstSection(),
		QuestionIndex:  0,
		Status:         models.ConversationActive,
	}
	if err := s.conversations.Create(ctx, conversation); err != nil {
		return nil, err
	}

	s.logger.Info("conversation started",
		"id", conversation.ID,
		"user_id", user.ID,
		"section", conversation.CurrentSection,
	)

	return conversation, nil
}

// Get retrieves a conversation scoped to its owner.
func (s *conversationService) Get(ctx context.Context, id, userID string) (*models.Conversation, error) {
	return s.conversations.GetByID(ctx, id, userID)
}

func (s *conversationService) validateStartRequest(req *services.StartConversationRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Title, validation.Length(0, config.MaxConversationTitleLength)),
	)
}
