package models

import "time"

// User is the owning account for conversations. The ID is the verified
// subject claim from the identity provider, not a locally generated key.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
