package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/teamhub-dev/teamhub/internal/auth"
	"github.com/teamhub-dev/teamhub/internal/constants"
	"github.com/teamhub-dev/teamhub/internal/models"
	"github.com/teamhub-dev/teamhub/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken = errors.New("user already exists with this email")
	// ErrInvalidCredentials is the single outward signal for wrong password,
	// unknown email and deactivated account alike.
	ErrInvalidCredentials   = errors.New("Invalid credentials")
	ErrInvalidEmail         = errors.New("invalid email format")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrNameTooShort         = errors.New("name too short")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidRefreshToken  = errors.New("invalid or expired refresh token")
	ErrSessionUnresolved    = errors.New("session could not be resolved")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthService handles registration, credential checks and token issuance.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenService
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenService) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// TokenPair carries freshly issued credentials for a user.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegisterInput represents the required information to create a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register validates the input, hashes the password and creates the user.
// Emails are compared case-insensitively; a duplicate fails with ErrEmailTaken.
func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(input.Name)
	if len(name) < constants.MinNameLength {
		return nil, ErrNameTooShort
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}

	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	exists, err := s.userRepo.EmailExists(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), constants.BcryptCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		IsActive:     true,
	}

	if err := s.userRepo.Create(user); err != nil {
		// Backstop for the check-then-create race on the unique email index.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated user. Wrong
// password, unknown email and inactive account all yield the same error.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.userRepo.TouchLastSeen(user.ID, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to update last seen: %w", err)
	}

	return user, nil
}

// IssueTokens mints an access/refresh pair for the user.
func (s *AuthService) IssueTokens(user *models.User) (*TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh validates a refresh token and mints a new access token. The user
// must still exist and be active; nothing is revoked or rotated server-side.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	claims, err := s.tokens.Verify(refreshToken, auth.TokenKindRefresh)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil || !user.IsActive {
		return "", ErrInvalidRefreshToken
	}

	access, err := s.tokens.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("failed to issue access token: %w", err)
	}
	return access, nil
}

// ResolveSession turns a verified access-token claim into a live user. A
// missing or deactivated user fails exactly like a bad token so callers
// cannot probe for accounts. The last-seen timestamp advances on every call
// (write-on-read; one column, not the full row).
func (s *AuthService) ResolveSession(userID uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, ErrSessionUnresolved
	}
	if !user.IsActive {
		return nil, ErrSessionUnresolved
	}

	if err := s.userRepo.TouchLastSeen(user.ID, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to update last seen: %w", err)
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// UpdateProfileInput represents optional profile changes.
type UpdateProfileInput struct {
	Name *string
}

// UpdateProfile applies profile changes to the user.
func (s *AuthService) UpdateProfile(id uint64, input UpdateProfileInput) (*models.User, error) {
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if len(name) < constants.MinNameLength {
			return nil, ErrNameTooShort
		}
		user.Name = name
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}
