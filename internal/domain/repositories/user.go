package repositories

import (
	"context"

	"legacybook/internal/domain/models"
)

// UserRepository persists user accounts keyed by the identity provider's
// subject claim.
type UserRepository interface {
	// Upsert creates the user if missing; an existing row is left untouched
	// apart from refreshed profile fields.
	Upsert(ctx context.Context, user *models.User) error
}
