package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/teamhub-dev/teamhub/internal/config"
)

// ErrInvalidToken covers bad signatures, malformed claims, wrong token kind
// and natural expiry. Callers treat all of them as unauthenticated.
var ErrInvalidToken = errors.New("invalid or expired token")

type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Claims is the signed claim set carried by both token kinds.
type Claims struct {
	UserID uint64 `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService issues and validates access and refresh tokens. The two kinds
// use distinct secrets, so a leaked access token cannot be replayed as a
// refresh token and vice versa. There is no revocation: a signed token stays
// valid until expiry.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
	}
}

// IssueAccessToken signs a short-lived token for API requests.
func (s *TokenService) IssueAccessToken(userID uint64, email string) (string, error) {
	return s.issue(userID, email, s.accessSecret, s.accessTTL)
}

// IssueRefreshToken signs a long-lived token used only to mint new access tokens.
func (s *TokenService) IssueRefreshToken(userID uint64, email string) (string, error) {
	return s.issue(userID, email, s.refreshSecret, s.refreshTTL)
}

func (s *TokenService) issue(userID uint64, email string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token of the given kind and returns its claims.
func (s *TokenService) Verify(tokenString string, kind TokenKind) (*Claims, error) {
	secret := s.accessSecret
	if kind == TokenKindRefresh {
		secret = s.refreshSecret
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == 0 {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
