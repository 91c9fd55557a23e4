package repository

import (
	"time"

	"github.com/teamhub-dev/teamhub/internal/models"
	"gorm.io/gorm"
)

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a project and guarantees the owner is present in the
	// member set exactly once.
	Create(project *models.Project) error

	// FindByID finds a project by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Project, error)

	// ListForUser lists projects the user owns or is a member of
	ListForUser(userID uint64, opts ListOptions) (*ListResult[models.Project], error)

	// Update saves the full project record
	Update(project *models.Project) error

	// AddMember adds a member to a project
	AddMember(member *models.ProjectMember) error

	// RemoveMember removes a member from a project
	RemoveMember(projectID, userID uint64) error

	// FindMember finds a specific project member
	FindMember(projectID, userID uint64) (*models.ProjectMember, error)

	// ListMembers lists all members of a project
	ListMembers(projectID uint64) ([]models.ProjectMember, error)
}

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	base *Repository[models.Project]
	db   *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{
		base: NewRepository[models.Project](db, Collection{
			SearchFields: []string{"name", "description"},
			SortFields: map[string]string{
				"name":      "name",
				"createdAt": "created_at",
				"updatedAt": "updated_at",
			},
			Preloads: []string{"Owner", "Members", "Members.User"},
		}),
		db: db,
	}
}

// Create inserts the project and the owner membership in one transaction.
// The membership insert backstops the invariant at persistence time, so a
// creation payload without the owner still yields a complete member set.
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}

		var existing models.ProjectMember
		err := tx.Where("project_id = ? AND user_id = ?", project.ID, project.OwnerID).
			First(&existing).Error
		if err == nil {
			return nil
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		return tx.Create(&models.ProjectMember{
			ProjectID: project.ID,
			UserID:    project.OwnerID,
			Role:      models.RoleOwner,
			JoinedAt:  time.Now(),
		}).Error
	})
}

func (r *GormProjectRepository) FindByID(id uint64, preload ...string) (*models.Project, error) {
	return r.base.FindByID(id, preload...)
}

func (r *GormProjectRepository) ListForUser(userID uint64, opts ListOptions) (*ListResult[models.Project], error) {
	memberships := r.db.Model(&models.ProjectMember{}).
		Select("project_id").
		Where("user_id = ?", userID)

	filter := NewFilter().
		Eq("is_active", true).
		Where("owner_id = ? OR id IN (?)", userID, memberships)

	return r.base.FindAll(filter, opts)
}

func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.base.Update(project)
}

func (r *GormProjectRepository) AddMember(member *models.ProjectMember) error {
	return r.db.Create(member).Error
}

func (r *GormProjectRepository) RemoveMember(projectID, userID uint64) error {
	return r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectMember{}).Error
}

func (r *GormProjectRepository) FindMember(projectID, userID uint64) (*models.ProjectMember, error) {
	var member models.ProjectMember
	if err := r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *GormProjectRepository) ListMembers(projectID uint64) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	if err := r.db.Preload("User").
		Where("project_id = ?", projectID).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}
