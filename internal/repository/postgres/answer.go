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

// PostgresAnswerRepository implements the AnswerRepository interface using PostgreSQL
type PostgresAnswerRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewAnswerRepository creates a new PostgresAnswerRepository
func NewAnswerRepository(config *RepositoryConfig) repositories.AnswerRepository {
	return &PostgresAnswerRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a new answer. Answers are append-only; there is no update path.
func (r *PostgresAnswerRepository) Create(ctx context.Context, answer *models.Answer) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (conversation_id, question, response, importance_score, tags, follow_up, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		RETURNING id, created_at
	`, r.tables.Answers)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		answer.ConversationID,
		answer.Question,
		answer.Response,
		answer.ImportanceScore,
		answer.Tags,
		answer.FollowUp,
	).Scan(&answer.ID, &answer.CreatedAt)

	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("conversation %s: %w", answer.ConversationID, domain.ErrNotFound)
		}
		return fmt.Errorf("create answer: %w", err)
	}

	return nil
}

// ListByConversation returns the owner's answers in chronological order.
// Ownership is enforced through the join so answers of foreign conversations
// are never returned.
func (r *PostgresAnswerRepository) ListByConversation(ctx context.Context, conversationID, userID string) ([]models.Answer, error) {
	query := fmt.Sprintf(`
		SELECT a.id, a.conversation_id, a.question, a.response,
		       a.importance_score, a.tags, a.follow_up, a.created_at
		FROM %s a
		JOIN %s c ON c.id = a.conversation_id
		WHERE a.conversation_id = $1 AND c.user_id = $2
		ORDER BY a.created_at ASC
	`, r.tables.Answers, r.tables.Conversations)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, conversationID, userID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	var answers []models.Answer
	for rows.Next() {
		var answer models.Answer
		err := rows.Scan(
			&answer.ID,
			&answer.ConversationID,
			&answer.Question,
			&answer.Response,
			&answer.ImportanceScore,
			&answer.Tags,
			&answer.FollowUp,
			&answer.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		answers = append(answers, answer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	return answers, nil
}
