package account

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                  uuid.UUID
	Name                string
	Email               string
	PasswordHash        string
	EmailVerifiedAt     *time.Time
	PasswordResetToken  *string
	PasswordResetExpiry *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}
