package account

import (
	"context"
	"time"

	"github.com/astro-web3/recipebox/internal/domain/token"
	"github.com/google/uuid"
)

// Repository returns ErrUserNotFound when no row matches.
type Repository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByResetToken(ctx context.Context, resetToken string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type TokenIssuer interface {
	Issue(userID, email, name string) (token.AccessToken, error)
}

// Mailer delivers password reset tokens.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, resetToken string, expiresAt time.Time) error
}
