package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/teamhub-dev/teamhub/internal/auth"
	"github.com/teamhub-dev/teamhub/internal/constants"
	apierrors "github.com/teamhub-dev/teamhub/internal/errors"
	"github.com/teamhub-dev/teamhub/internal/metrics"
	"github.com/teamhub-dev/teamhub/internal/services"
)

// AuthenticatedUser is the immutable principal attached to the request once
// the bearer token resolves. Handlers read it; nothing mutates it.
type AuthenticatedUser struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RequireAuth resolves the Authorization bearer token to a live user and
// attaches the principal to the context. Missing header, bad signature,
// expiry, unknown user and deactivated user all produce the same 401.
func RequireAuth(tokens *auth.TokenService, authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := resolve(c, tokens, authService)
		if !ok {
			metrics.RecordAuthAttempt("rejected")
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		metrics.RecordAuthAttempt("ok")
		c.Set(constants.ContextKeyUser, principal)
		c.Next()
	}
}

// OptionalAuth attempts the same resolution but proceeds unauthenticated on
// any failure. Routes behind it must handle the principal being absent.
func OptionalAuth(tokens *auth.TokenService, authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if principal, ok := resolve(c, tokens, authService); ok {
			c.Set(constants.ContextKeyUser, principal)
		}
		c.Next()
	}
}

func resolve(c *gin.Context, tokens *auth.TokenService, authService *services.AuthService) (AuthenticatedUser, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return AuthenticatedUser{}, false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return AuthenticatedUser{}, false
	}

	claims, err := tokens.Verify(parts[1], auth.TokenKindAccess)
	if err != nil {
		return AuthenticatedUser{}, false
	}

	user, err := authService.ResolveSession(claims.UserID)
	if err != nil {
		return AuthenticatedUser{}, false
	}

	return AuthenticatedUser{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}, true
}

// GetCurrentUser retrieves the authenticated principal from the context.
func GetCurrentUser(c *gin.Context) (AuthenticatedUser, bool) {
	value, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return AuthenticatedUser{}, false
	}
	principal, ok := value.(AuthenticatedUser)
	return principal, ok
}
