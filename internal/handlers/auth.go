package handlers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/teamhub-dev/teamhub/internal/constants"
	"github.com/teamhub-dev/teamhub/internal/dto"
	apierrors "github.com/teamhub-dev/teamhub/internal/errors"
	"github.com/teamhub-dev/teamhub/internal/middleware"
	"github.com/teamhub-dev/teamhub/internal/services"
	"github.com/teamhub-dev/teamhub/internal/utils"
	"go.uber.org/zap"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Register creates a new account and returns the user with a token pair.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, "Invalid request body", nil)
		return
	}

	user, err := h.authService.Register(services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	pair, err := h.authService.IssueTokens(user)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	utils.Created(c, dto.AuthResponseDTO{
		User:         dto.ToUserDTO(*user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "User registered successfully")
}

// Login verifies credentials and returns the user with a token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, "Invalid request body", nil)
		return
	}

	user, err := h.authService.Login(services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	pair, err := h.authService.IssueTokens(user)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	utils.OK(c, dto.AuthResponseDTO{
		User:         dto.ToUserDTO(*user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "Login successful")
}

// RefreshToken mints a new access token from a valid refresh token.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	type RefreshRequest struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}

	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Unauthorized(c, "Refresh token is required")
		return
	}

	access, err := h.authService.Refresh(req.RefreshToken)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	utils.OK(c, gin.H{"accessToken": access}, "Token refreshed successfully")
}

// Logout acknowledges the client discarding its tokens. Nothing is revoked
// server-side; outstanding tokens stay valid until expiry.
func (h *AuthHandler) Logout(c *gin.Context) {
	utils.OK(c, nil, "Logged out successfully")
}

// GetProfile returns the authenticated user.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	principal, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	user, err := h.authService.GetUser(principal.ID)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	utils.OK(c, dto.ToUserDTO(*user), "Profile retrieved successfully")
}

// UpdateProfile applies profile changes to the authenticated user.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	principal, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type UpdateProfileRequest struct {
		Name *string `json:"name"`
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, "Invalid request body", nil)
		return
	}

	user, err := h.authService.UpdateProfile(principal.ID, services.UpdateProfileInput{Name: req.Name})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	utils.OK(c, dto.ToUserDTO(*user), "Profile updated successfully")
}

func (h *AuthHandler) respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNameTooShort):
		apierrors.ValidationFailed(c, fmt.Sprintf("Name must be at least %d characters", constants.MinNameLength),
			[]gin.H{{"field": "name", "message": err.Error()}})
	case errors.Is(err, services.ErrInvalidEmail):
		apierrors.ValidationFailed(c, "Please provide a valid email",
			[]gin.H{{"field": "email", "message": err.Error()}})
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.ValidationFailed(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength),
			[]gin.H{{"field": "password", "message": err.Error()}})
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, "User already exists with this email")
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.Unauthorized(c, "Invalid credentials")
	case errors.Is(err, services.ErrInvalidRefreshToken):
		apierrors.Unauthorized(c, "Invalid or expired refresh token")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	default:
		logUnexpected(h.logger, c, err)
		apierrors.Respond(c, apierrors.FromPersistence(err))
	}
}

// logUnexpected records an unhandled fault with request context. The response
// body only ever carries a generic message.
func logUnexpected(logger *zap.Logger, c *gin.Context, err error) {
	logger.Error("unexpected error",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("client_ip", c.ClientIP()),
		zap.Error(err))
}
