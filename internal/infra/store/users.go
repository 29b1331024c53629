package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/astro-web3/recipebox/internal/domain/account"
	"github.com/google/uuid"
)

const userColumns = `id, name, email, password_hash, email_verified_at,
	password_reset_token, password_reset_expiry, created_at, updated_at`

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

var _ account.Repository = (*UserRepository)(nil)

func (r *UserRepository) Create(ctx context.Context, u *account.User) error {
	_, err := r.db.ExecContext(ctx, r.db.rebind(`
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		u.ID, u.Name, u.Email, u.PasswordHash, nullTime(u.EmailVerifiedAt),
		nullString(u.PasswordResetToken), nullTime(u.PasswordResetExpiry), u.CreatedAt, u.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return account.ErrEmailExists
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u *account.User) error {
	res, err := r.db.ExecContext(ctx, r.db.rebind(`
		UPDATE users
		SET name = ?, email = ?, password_hash = ?, email_verified_at = ?,
			password_reset_token = ?, password_reset_expiry = ?, updated_at = ?
		WHERE id = ?`),
		u.Name, u.Email, u.PasswordHash, nullTime(u.EmailVerifiedAt),
		nullString(u.PasswordResetToken), nullTime(u.PasswordResetExpiry), u.UpdatedAt, u.ID,
	)
	if isUniqueViolation(err) {
		return account.ErrEmailExists
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return account.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*account.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *UserRepository) GetByResetToken(ctx context.Context, resetToken string) (*account.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE password_reset_token = ?`, resetToken)
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, r.db.rebind(`SELECT COUNT(*) FROM users WHERE email = ?`), email).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n > 0, nil
}

// Count returns the number of users; the seeder uses it to detect an empty database.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*account.User, error) {
	var (
		u           account.User
		verifiedAt  sql.NullTime
		resetToken  sql.NullString
		resetExpiry sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, r.db.rebind(query), arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &verifiedAt,
		&resetToken, &resetExpiry, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, account.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if verifiedAt.Valid {
		u.EmailVerifiedAt = &verifiedAt.Time
	}
	if resetToken.Valid {
		u.PasswordResetToken = &resetToken.String
	}
	if resetExpiry.Valid {
		u.PasswordResetExpiry = &resetExpiry.Time
	}

	return &u, nil
}
