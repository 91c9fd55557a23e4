package dto

import (
	"time"

	"github.com/teamhub-dev/teamhub/internal/models"
)

// UserDTO represents a user in API responses. The password hash never has a
// field here, so it cannot leak through serialization.
type UserDTO struct {
	ID        uint64     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	IsActive  bool       `json:"is_active"`
	LastSeen  *time.Time `json:"last_seen"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		IsActive:  user.IsActive,
		LastSeen:  user.LastSeen,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// AuthResponseDTO is the payload returned by register and login.
type AuthResponseDTO struct {
	User         UserDTO `json:"user"`
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken"`
}
