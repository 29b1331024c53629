package mailer

import (
	"context"
	"log/slog"
	"time"

	"github.com/astro-web3/recipebox/pkg/logger"
)

// LogMailer writes password reset notifications to the log instead of sending email.
type LogMailer struct{}

func (LogMailer) SendPasswordReset(ctx context.Context, email, resetToken string, expiresAt time.Time) error {
	logger.InfoContext(ctx, "password reset email",
		slog.String("to", email),
		slog.String("reset_token", resetToken),
		slog.Time("expires_at", expiresAt),
	)
	return nil
}
