package repository

import (
	"github.com/teamhub-dev/teamhub/internal/models"
	"gorm.io/gorm"
)

// ThreadRepository defines the interface for discussion thread data access
type ThreadRepository interface {
	// Create creates a new thread
	Create(thread *models.Thread) error

	// FindByID finds a thread by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Thread, error)

	// ListForProject lists a project's threads with search and pagination
	ListForProject(projectID uint64, opts ListOptions) (*ListResult[models.Thread], error)

	// CreateReply appends a reply to a thread
	CreateReply(reply *models.Reply) error
}

// GormThreadRepository is a GORM implementation of ThreadRepository
type GormThreadRepository struct {
	base *Repository[models.Thread]
	db   *gorm.DB
}

// NewThreadRepository creates a new ThreadRepository
func NewThreadRepository(db *gorm.DB) ThreadRepository {
	return &GormThreadRepository{
		base: NewRepository[models.Thread](db, Collection{
			SearchFields: []string{"title", "content"},
			SortFields: map[string]string{
				"title":     "title",
				"createdAt": "created_at",
				"updatedAt": "updated_at",
			},
			Preloads: []string{"Author"},
		}),
		db: db,
	}
}

func (r *GormThreadRepository) Create(thread *models.Thread) error {
	return r.base.Create(thread)
}

func (r *GormThreadRepository) FindByID(id uint64, preload ...string) (*models.Thread, error) {
	return r.base.FindByID(id, preload...)
}

func (r *GormThreadRepository) ListForProject(projectID uint64, opts ListOptions) (*ListResult[models.Thread], error) {
	return r.base.FindAll(NewFilter().Eq("project_id", projectID), opts)
}

func (r *GormThreadRepository) CreateReply(reply *models.Reply) error {
	return r.db.Create(reply).Error
}
