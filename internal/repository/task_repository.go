package repository

import (
	"github.com/teamhub-dev/teamhub/internal/models"
	"gorm.io/gorm"
)

// TaskFilter holds the typed filtering options for listing tasks. Unknown
// fields simply have no place to go. A zero ProjectID lists across projects,
// which assigned-task listings use.
type TaskFilter struct {
	ProjectID  uint64
	Status     *models.TaskStatus
	Priority   *models.TaskPriority
	AssigneeID *uint64
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks for a project with filtering, search and pagination
	List(filter TaskFilter, opts ListOptions) (*ListResult[models.Task], error)

	// Update saves the full task record, re-running model validation
	Update(task *models.Task) error

	// Delete soft deletes a task
	Delete(id uint64) error
}

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	base *Repository[models.Task]
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{
		base: NewRepository[models.Task](db, Collection{
			SearchFields: []string{"title", "description"},
			SortFields: map[string]string{
				"title":     "title",
				"status":    "status",
				"priority":  "priority",
				"dueDate":   "due_date",
				"createdAt": "created_at",
				"updatedAt": "updated_at",
			},
			Preloads: []string{"Creator", "Assignee"},
		}),
	}
}

func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.base.Create(task)
}

func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	return r.base.FindByID(id, preload...)
}

func (r *GormTaskRepository) List(filter TaskFilter, opts ListOptions) (*ListResult[models.Task], error) {
	f := NewFilter()
	if filter.ProjectID != 0 {
		f.Eq("project_id", filter.ProjectID)
	}
	if filter.Status != nil {
		f.Eq("status", *filter.Status)
	}
	if filter.Priority != nil {
		f.Eq("priority", *filter.Priority)
	}
	if filter.AssigneeID != nil {
		f.Eq("assignee_id", *filter.AssigneeID)
	}
	return r.base.FindAll(f, opts)
}

func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.base.Update(task)
}

func (r *GormTaskRepository) Delete(id uint64) error {
	return r.base.DeleteByID(id)
}
