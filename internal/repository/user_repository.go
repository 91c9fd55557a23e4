package repository

import (
	"strings"
	"time"

	"github.com/teamhub-dev/teamhub/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email, case-insensitively
	FindByEmail(email string) (*models.User, error)

	// EmailExists reports whether an account with this email exists
	EmailExists(email string) (bool, error)

	// Update saves the full user record
	Update(user *models.User) error

	// TouchLastSeen advances only the last-seen column. Called on every
	// authenticated request, so it must not rewrite the whole row.
	TouchLastSeen(id uint64, at time.Time) error
}

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	base *Repository[models.User]
	db   *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{
		base: NewRepository[models.User](db, Collection{
			SearchFields: []string{"name", "email"},
			SortFields: map[string]string{
				"name":      "name",
				"email":     "email",
				"createdAt": "created_at",
			},
		}),
		db: db,
	}
}

func (r *GormUserRepository) Create(user *models.User) error {
	return r.base.Create(user)
}

func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	return r.base.FindByID(id)
}

func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	return r.base.FindOne(NewFilter().Where("LOWER(email) = ?", strings.ToLower(email)))
}

func (r *GormUserRepository) EmailExists(email string) (bool, error) {
	return r.base.Exists(NewFilter().Where("LOWER(email) = ?", strings.ToLower(email)))
}

func (r *GormUserRepository) Update(user *models.User) error {
	return r.base.Update(user)
}

func (r *GormUserRepository) TouchLastSeen(id uint64, at time.Time) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_seen", at).Error
}
