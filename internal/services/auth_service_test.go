package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/teamhub-dev/teamhub/internal/auth"
	"github.com/teamhub-dev/teamhub/internal/config"
	"github.com/teamhub-dev/teamhub/internal/models"
	"github.com/teamhub-dev/teamhub/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type authServiceEnv struct {
	db      *gorm.DB
	service *AuthService
	tokens  *auth.TokenService
}

func setupAuthService(t *testing.T) authServiceEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	tokens := auth.NewTokenService(&config.Config{
		AccessTokenSecret:  "test-access-secret",
		RefreshTokenSecret: "test-refresh-secret",
		AccessTokenTTL:     time.Minute,
		RefreshTokenTTL:    time.Hour,
	})

	userRepo := repository.NewUserRepository(db)
	return authServiceEnv{
		db:      db,
		service: NewAuthService(userRepo, tokens),
		tokens:  tokens,
	}
}

func TestAuthService_Register(t *testing.T) {
	env := setupAuthService(t)

	user, err := env.service.Register(RegisterInput{
		Name:     "New User",
		Email:    "New.User@Example.COM",
		Password: "supersecret",
	})
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.Equal(t, "new.user@example.com", user.Email)
	require.True(t, user.IsActive)

	// The stored hash must verify the password without ever containing it.
	require.NotContains(t, user.PasswordHash, "supersecret")
	require.True(t, strings.HasPrefix(user.PasswordHash, "$2"))
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("supersecret")))
}

func TestAuthService_RegisterValidation(t *testing.T) {
	env := setupAuthService(t)

	_, err := env.service.Register(RegisterInput{Name: "X", Email: "x@example.com", Password: "supersecret"})
	require.ErrorIs(t, err, ErrNameTooShort)

	_, err = env.service.Register(RegisterInput{Name: "Valid Name", Email: "not-an-email", Password: "supersecret"})
	require.ErrorIs(t, err, ErrInvalidEmail)

	_, err = env.service.Register(RegisterInput{Name: "Valid Name", Email: "y@example.com", Password: "short"})
	require.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	env := setupAuthService(t)

	_, err := env.service.Register(RegisterInput{Name: "First", Email: "dup@example.com", Password: "supersecret"})
	require.NoError(t, err)

	// Same address in a different case is still a duplicate.
	_, err = env.service.Register(RegisterInput{Name: "Second", Email: "DUP@example.com", Password: "supersecret"})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthService_Login(t *testing.T) {
	env := setupAuthService(t)

	registered, err := env.service.Register(RegisterInput{Name: "Login User", Email: "login@example.com", Password: "supersecret"})
	require.NoError(t, err)

	user, err := env.service.Login(LoginInput{Email: "login@example.com", Password: "supersecret"})
	require.NoError(t, err)
	require.Equal(t, registered.ID, user.ID)

	// Login advances last seen.
	var reloaded models.User
	require.NoError(t, env.db.First(&reloaded, user.ID).Error)
	require.NotNil(t, reloaded.LastSeen)
}

func TestAuthService_LoginFailuresLookAlike(t *testing.T) {
	env := setupAuthService(t)

	_, err := env.service.Register(RegisterInput{Name: "Login User", Email: "login@example.com", Password: "supersecret"})
	require.NoError(t, err)

	_, err = env.service.Login(LoginInput{Email: "login@example.com", Password: "wrongpassword"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.service.Login(LoginInput{Email: "ghost@example.com", Password: "supersecret"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, env.db.Model(&models.User{}).Where("email = ?", "login@example.com").
		Update("is_active", false).Error)
	_, err = env.service.Login(LoginInput{Email: "login@example.com", Password: "supersecret"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_RefreshFlow(t *testing.T) {
	env := setupAuthService(t)

	user, err := env.service.Register(RegisterInput{Name: "Refresh User", Email: "refresh@example.com", Password: "supersecret"})
	require.NoError(t, err)

	pair, err := env.service.IssueTokens(user)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	access, err := env.service.Refresh(pair.RefreshToken)
	require.NoError(t, err)

	claims, err := env.tokens.Verify(access, auth.TokenKindAccess)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)

	// An access token is not accepted where a refresh token is required.
	_, err = env.service.Refresh(pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestAuthService_RefreshDeactivatedUser(t *testing.T) {
	env := setupAuthService(t)

	user, err := env.service.Register(RegisterInput{Name: "Gone User", Email: "gone@example.com", Password: "supersecret"})
	require.NoError(t, err)

	pair, err := env.service.IssueTokens(user)
	require.NoError(t, err)

	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("is_active", false).Error)

	_, err = env.service.Refresh(pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestAuthService_ResolveSession(t *testing.T) {
	env := setupAuthService(t)

	user, err := env.service.Register(RegisterInput{Name: "Session User", Email: "session@example.com", Password: "supersecret"})
	require.NoError(t, err)

	resolved, err := env.service.ResolveSession(user.ID)
	require.NoError(t, err)
	require.Equal(t, user.ID, resolved.ID)

	// Resolution is a read with a write: last seen advances.
	var reloaded models.User
	require.NoError(t, env.db.First(&reloaded, user.ID).Error)
	require.NotNil(t, reloaded.LastSeen)

	_, err = env.service.ResolveSession(99999)
	require.ErrorIs(t, err, ErrSessionUnresolved)

	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("is_active", false).Error)
	_, err = env.service.ResolveSession(user.ID)
	require.ErrorIs(t, err, ErrSessionUnresolved)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	env := setupAuthService(t)

	user, err := env.service.Register(RegisterInput{Name: "Old Name", Email: "profile@example.com", Password: "supersecret"})
	require.NoError(t, err)

	newName := "New Name"
	updated, err := env.service.UpdateProfile(user.ID, UpdateProfileInput{Name: &newName})
	require.NoError(t, err)
	require.Equal(t, "New Name", updated.Name)

	tooShort := "X"
	_, err = env.service.UpdateProfile(user.ID, UpdateProfileInput{Name: &tooShort})
	require.ErrorIs(t, err, ErrNameTooShort)
}
