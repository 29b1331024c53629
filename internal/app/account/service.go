package account

import (
	"context"
	"log/slog"

	accountdomain "github.com/astro-web3/recipebox/internal/domain/account"
	"github.com/astro-web3/recipebox/pkg/logger"
	"github.com/astro-web3/recipebox/pkg/tracer"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

type Service struct {
	domainService accountdomain.Service
}

func NewService(domainService accountdomain.Service) *Service {
	return &Service{
		domainService: domainService,
	}
}

func (s *Service) Signup(ctx context.Context, name, email, password string) (*accountdomain.AuthResult, error) {
	ctx, span := tracer.Start(ctx, "app.account.Signup")
	defer span.End()

	res, err := s.domainService.Signup(ctx, name, email, password)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.String("account.user_id", res.User.ID.String()))
	logger.InfoContext(ctx, "user signed up", slog.String("user_id", res.User.ID.String()))

	return res, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*accountdomain.AuthResult, error) {
	ctx, span := tracer.Start(ctx, "app.account.Login")
	defer span.End()

	res, err := s.domainService.Login(ctx, email, password)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.String("account.user_id", res.User.ID.String()))
	logger.InfoContext(ctx, "user logged in", slog.String("user_id", res.User.ID.String()))

	return res, nil
}

func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	ctx, span := tracer.Start(ctx, "app.account.ForgotPassword")
	defer span.End()

	if err := s.domainService.ForgotPassword(ctx, email); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	ctx, span := tracer.Start(ctx, "app.account.ResetPassword")
	defer span.End()

	if err := s.domainService.ResetPassword(ctx, resetToken, newPassword); err != nil {
		span.RecordError(err)
		return err
	}

	logger.InfoContext(ctx, "password reset completed")
	return nil
}

func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*accountdomain.User, error) {
	ctx, span := tracer.Start(ctx, "app.account.Profile")
	defer span.End()

	span.SetAttributes(attribute.String("account.user_id", userID.String()))

	user, err := s.domainService.Profile(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return user, nil
}
