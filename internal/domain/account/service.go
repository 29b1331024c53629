package account

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/astro-web3/recipebox/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	maxPasswordBytes  = 72
	maxNameLength     = 100
	resetTokenBytes   = 32
	resetTokenTTL     = time.Hour
)

// unknownUserHash stands in for a stored hash when a login names no account,
// so both paths pay for one bcrypt comparison.
var unknownUserHash = sync.OnceValue(func() []byte {
	hash, _ := bcrypt.GenerateFromPassword([]byte("recipebox-unknown-user"), bcrypt.DefaultCost)
	return hash
})

var compareHash = bcrypt.CompareHashAndPassword

type Service interface {
	Signup(ctx context.Context, name, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// ForgotPassword succeeds whether or not the account exists.
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
	Profile(ctx context.Context, userID uuid.UUID) (*User, error)
}

type service struct {
	repo     Repository
	issuer   TokenIssuer
	mailer   Mailer
	hashCost int
	now      func() time.Time
}

func NewService(repo Repository, issuer TokenIssuer, mailer Mailer) Service {
	return &service{
		repo:     repo,
		issuer:   issuer,
		mailer:   mailer,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

func (s *service) Signup(ctx context.Context, name, email, password string) (*AuthResult, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrEmailExists
	}

	if err := validatePassword(password); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("Name is required")
	}
	if len(name) > maxNameLength {
		return nil, invalid("Name is too long")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := &User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.authenticate(user)
}

func (s *service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		_ = compareHash(unknownUserHash(), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if compareHash([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return s.authenticate(user)
}

func (s *service) ForgotPassword(ctx context.Context, email string) error {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		logger.DebugContext(ctx, "password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	resetToken, err := newResetToken()
	if err != nil {
		return err
	}

	now := s.now().UTC()
	expiry := now.Add(resetTokenTTL)
	user.PasswordResetToken = &resetToken
	user.PasswordResetExpiry = &expiry
	user.UpdatedAt = now

	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, resetToken, expiry); err != nil {
		logger.WarnContext(ctx, "failed to send password reset email",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	return nil
}

func (s *service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if strings.TrimSpace(resetToken) == "" {
		return ErrInvalidResetToken
	}

	user, err := s.repo.GetByResetToken(ctx, resetToken)
	if errors.Is(err, ErrUserNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return fmt.Errorf("get user by reset token: %w", err)
	}

	now := s.now().UTC()
	if user.PasswordResetExpiry == nil || !now.Before(*user.PasswordResetExpiry) {
		return ErrInvalidResetToken
	}

	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	user.PasswordResetToken = nil
	user.PasswordResetExpiry = nil
	user.UpdatedAt = now

	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	return nil
}

func (s *service) Profile(ctx context.Context, userID uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *service) authenticate(user *User) (*AuthResult, error) {
	access, err := s.issuer.Issue(user.ID.String(), user.Email, user.Name)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &AuthResult{
		Token:     access.Token,
		ExpiresAt: access.ExpiresAt,
		User:      user,
	}, nil
}

func validatePassword(password string) error {
	if strings.TrimSpace(password) == "" || len(password) < minPasswordLength {
		return invalid("Password must be at least 8 characters long")
	}
	if len(password) > maxPasswordBytes {
		return invalid("Password must be at most 72 bytes long")
	}
	return nil
}

func newResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
