package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"legacybook/internal/domain/models"
	"legacybook/internal/domain/repositories"
)

// PostgresDecisionRepository implements the DecisionRepository interface
// using PostgreSQL
type PostgresDecisionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewDecisionRepository creates a new PostgresDecisionRepository
func NewDecisionRepository(config *RepositoryConfig) repositories.DecisionRepository {
	return &PostgresDecisionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Upsert records a decision, replacing any earlier decision for the same
// (conversation, issue) pair. Issue IDs are deterministic across verification
// runs, so re-deciding the same issue overwrites rather than duplicates.
func (r *PostgresDecisionRepository) Upsert(ctx context.Context, decision *models.VerificationDecision) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (conversation_id, issue_id, decision, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (conversation_id, issue_id) DO UPDATE
		SET decision = EXCLUDED.decision, created_at = now()
		RETURNING id, created_at
	`, r.tables.Decisions)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		decision.ConversationID,
		decision.IssueID,
		decision.Decision,
	).Scan(&decision.ID, &decision.CreatedAt)

	if err != nil {
		return fmt.Errorf("upsert decision: %w", err)
	}

	return nil
}

// ListByConversation returns the owner's decisions for a conversation.
func (r *PostgresDecisionRepository) ListByConversation(ctx context.Context, conversationID, userID string) ([]models.VerificationDecision, error) {
	query := fmt.Sprintf(`
		SELECT d.id, d.conversation_id, d.issue_id, d.decision, d.created_at
		FROM %s d
		JOIN %s c ON c.id = d.conversation_id
		WHERE d.conversation_id = $1 AND c.user_id = $2
		ORDER BY d.created_at ASC
	`, r.tables.Decisions, r.tables.Conversations)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, conversationID, userID)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var decisions []models.VerificationDecision
	for rows.Next() {
		var decision models.VerificationDecision
		err := rows.Scan(
			&decision.ID,
			&decision.ConversationID,
			&decision.IssueID,
			&decision.Decision,
			&decision.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		decisions = append(decisions, decision)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}

	return decisions, nil
}
