package accounts

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	accountapp "github.com/astro-web3/recipebox/internal/app/account"
	accountdomain "github.com/astro-web3/recipebox/internal/domain/account"
	"github.com/astro-web3/recipebox/internal/identity"
	"github.com/astro-web3/recipebox/pkg/logger"
	"github.com/astro-web3/recipebox/pkg/tracer"
	"github.com/gin-gonic/gin"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type userResponse struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type authResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      userResponse `json:"user"`
}

type Handler struct {
	service  *accountapp.Service
	resolver *identity.Resolver
}

func NewHandler(service *accountapp.Service, resolver *identity.Resolver) *Handler {
	return &Handler{
		service:  service,
		resolver: resolver,
	}
}

func (h *Handler) Register(r gin.IRouter) {
	auth := r.Group("/auth")
	auth.POST("/signup", h.Signup)
	auth.POST("/login", h.Login)
	auth.POST("/forgot-password", h.ForgotPassword)
	auth.POST("/reset-password", h.ResetPassword)
	auth.GET("/profile", h.resolver.Require(), h.Profile)
}

func (h *Handler) Signup(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "transport.http.accounts.Signup")
	defer span.End()

	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res, err := h.service.Signup(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		span.RecordError(err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAuthResponse(res))
}

func (h *Handler) Login(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "transport.http.accounts.Login")
	defer span.End()

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		span.RecordError(err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAuthResponse(res))
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "transport.http.accounts.ForgotPassword")
	defer span.End()

	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.service.ForgotPassword(ctx, req.Email); err != nil {
		span.RecordError(err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset email sent if account exists"})
}

func (h *Handler) ResetPassword(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "transport.http.accounts.ResetPassword")
	defer span.End()

	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.service.ResetPassword(ctx, req.Token, req.NewPassword); err != nil {
		span.RecordError(err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}

func (h *Handler) Profile(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "transport.http.accounts.Profile")
	defer span.End()

	user, err := h.service.Profile(ctx, identity.UserID(c))
	if err != nil {
		span.RecordError(err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

func writeError(c *gin.Context, err error) {
	var verr *accountdomain.ValidationError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
	case errors.Is(err, accountdomain.ErrEmailExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already exists"})
	case errors.Is(err, accountdomain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, accountdomain.ErrInvalidResetToken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset token"})
	case errors.Is(err, accountdomain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	default:
		logger.ErrorContext(c.Request.Context(), "accounts request failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func toUserResponse(u *accountdomain.User) userResponse {
	return userResponse{
		ID:        u.ID.String(),
		FullName:  u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toAuthResponse(res *accountdomain.AuthResult) authResponse {
	return authResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      toUserResponse(res.User),
	}
}
