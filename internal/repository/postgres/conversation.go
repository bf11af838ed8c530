package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"legacybook/internal/domain"
	"legacybook/internal/domain/models"
	"legacybook/internal/domain/repositories"
)

// PostgresConversationRepository implements the ConversationRepository
// interface using PostgreSQL
type PostgresConversationRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewConversationRepository creates a new PostgresConversationRepository
func NewConversationRepository(config *RepositoryConfig) repositories.ConversationRepository {
	return &PostgresConversationRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a new conversation
func (r *PostgresConversationRepository) Create(ctx context.Context, conversation *models.Conversation) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, title, current_section, question_index, status,
		                generation_count, verification_count, regeneration_count,
		                created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, 0, 0, now(), now())
		RETURNING id, created_at, updated_at
	`, r.tables.Conversations)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		conversation.UserID,
		conversation.Title,
		conversation.CurrentSection,
		conversation.QuestionIndex,
		conversation.Status,
	).Scan(&conversation.ID, &conversation.CreatedAt, &conversation.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create conversation: %w", err)
	}

	return nil
}

// GetByID retrieves a conversation by ID, scoped to its owner
func (r *PostgresConversationRepository) GetByID(ctx context.Context, id, userID string) (*models.Conversation, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, title, current_section, question_index, status,
		       generation_count, verification_count, regeneration_count,
		       created_at, updated_at
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Conversations)

	var conversation models.Conversation
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id, userID).Scan(
		&conversation.ID,
		&conversation.UserID,
		&conversation.Title,
		&conversation.CurrentSection,
		&conversation.QuestionIndex,
		&conversation.Status,
		&conversation.GenerationCount,
		&conversation.VerificationCount,
		&conversation.RegenerationCount,
		&conversation.CreatedAt,
		&conversation.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	return &conversation, nil
}

// AdvanceQuestion increments the question index conditionally on the expected
// prior value. Two answer submissions racing on the same index leave exactly
// one winner; the loser gets domain.ErrConflict.
func (r *PostgresConversationRepository) AdvanceQuestion(ctx context.Context, id string, fromIndex int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET question_index = question_index + 1, updated_at = now()
		WHERE id = $1 AND question_index = $2
	`, r.tables.Conversations)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, fromIndex)
	if err != nil {
		return fmt.Errorf("advance question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.ConflictError{
			Message: fmt.Sprintf("conversation %s moved past question %d", id, fromIndex),
		}
	}

	return nil
}

// AdvanceSection moves the conversation into the next section with the index
// reset, conditional on the expected current section.
func (r *PostgresConversationRepository) AdvanceSection(ctx context.Context, id, fromSection, toSection string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET current_section = $3, question_index = 0, updated_at = now()
		WHERE id = $1 AND current_section = $2
	`, r.tables.Conversations)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, fromSection, toSection)
	if err != nil {
		return fmt.Errorf("advance section: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.ConflictError{
			Message: fmt.Sprintf("conversation %s already left section %s", id, fromSection),
		}
	}

	return nil
}

// MarkCompleted transitions the conversation to completed and stores the
// completion sentinel index.
func (r *PostgresConversationRepository) MarkCompleted(ctx context.Context, id, fromSection string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $3, question_index = $4, updated_at = now()
		WHERE id = $1 AND current_section = $2 AND status <> $3
	`, r.tables.Conversations)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, fromSection,
		models.ConversationCompleted, models.QuestionIndexCompleted)
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.ConflictError{
			Message: fmt.Sprintf("conversation %s was completed concurrently", id),
		}
	}

	return nil
}

// IncrementUsage atomically bumps the counter for the given action.
func (r *PostgresConversationRepository) IncrementUsage(ctx context.Context, id string, action models.UsageAction) error {
	var column string
	switch action {
	case models.ActionGenerate:
		column = "generation_count"
	case models.ActionVerify:
		column = "verification_count"
	case models.ActionRegenerate:
		column = "regeneration_count"
	default:
		return fmt.Errorf("unknown usage action %q", action)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = %s + 1, updated_at = now()
		WHERE id = $1
	`, r.tables.Conversations, column, column)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment %s: %w", column, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
