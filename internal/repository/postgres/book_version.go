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

// PostgresBookVersionRepository implements the BookVersionRepository
// interface using PostgreSQL
type PostgresBookVersionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewBookVersionRepository creates a new PostgresBookVersionRepository
func NewBookVersionRepository(config *RepositoryConfig) repositories.BookVersionRepository {
	return &PostgresBookVersionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a new version. The version number is computed inside the
// insert (latest + 1 for the conversation) so concurrent regenerations
// cannot both claim the same number.
func (r *PostgresBookVersionRepository) Create(ctx context.Context, version *models.BookVersion) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (conversation_id, version_number, content, status, created_at)
		SELECT $1, COALESCE(MAX(version_number), 0) + 1, $2, $3, now()
		FROM %s WHERE conversation_id = $1
		RETURNING id, version_number, created_at
	`, r.tables.BookVersions, r.tables.BookVersions)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		version.ConversationID,
		version.Content,
		version.Status,
	).Scan(&version.ID, &version.VersionNumber, &version.CreatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			// Two concurrent inserts computed the same next number.
			return &domain.ConflictError{Message: "concurrent regeneration, retry"}
		}
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("conversation %s: %w", version.ConversationID, domain.ErrNotFound)
		}
		return fmt.Errorf("create book version: %w", err)
	}

	return nil
}

// GetByID retrieves a version scoped to the owning user.
func (r *PostgresBookVersionRepository) GetByID(ctx context.Context, id, userID string) (*models.BookVersion, error) {
	query := fmt.Sprintf(`
		SELECT v.id, v.conversation_id, v.version_number, v.content, v.status, v.created_at
		FROM %s v
		JOIN %s c ON c.id = v.conversation_id
		WHERE v.id = $1 AND c.user_id = $2
	`, r.tables.BookVersions, r.tables.Conversations)

	var version models.BookVersion
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id, userID).Scan(
		&version.ID,
		&version.ConversationID,
		&version.VersionNumber,
		&version.Content,
		&version.Status,
		&version.CreatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("book version %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get book version: %w", err)
	}

	return &version, nil
}

// DemoteFinal moves every FINAL version of the conversation to VERIFIED.
// A multi-row update: combined with SetStatus inside one transaction it
// keeps the at-most-one-FINAL invariant.
func (r *PostgresBookVersionRepository) DemoteFinal(ctx context.Context, conversationID string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET status = $2
		WHERE conversation_id = $1 AND status = $3
	`, r.tables.BookVersions)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, conversationID, models.VersionVerified, models.VersionFinal); err != nil {
		return fmt.Errorf("demote final versions: %w", err)
	}

	return nil
}

// SetStatus updates a single version's status.
func (r *PostgresBookVersionRepository) SetStatus(ctx context.Context, id, status string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET status = $2 WHERE id = $1
	`, r.tables.BookVersions)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("set version status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("book version %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
