package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"legacybook/internal/domain/models"
	"legacybook/internal/domain/repositories"
)

// PostgresUserRepository implements the UserRepository interface using PostgreSQL
type PostgresUserRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewUserRepository creates a new PostgresUserRepository
func NewUserRepository(config *RepositoryConfig) repositories.UserRepository {
	return &PostgresUserRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Upsert inserts the user or refreshes profile fields on conflict.
func (r *PostgresUserRepository) Upsert(ctx context.Context, user *models.User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, email, name, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE
		SET email = COALESCE(NULLIF(EXCLUDED.email, ''), %s.email),
		    name  = COALESCE(NULLIF(EXCLUDED.name, ''), %s.name)
		RETURNING created_at
	`, r.tables.Users, r.tables.Users, r.tables.Users)

	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, user.ID, user.Email, user.Name).Scan(&user.CreatedAt); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}

	return nil
}
