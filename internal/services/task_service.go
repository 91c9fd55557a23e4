package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teamhub-dev/teamhub/internal/models"
	"github.com/teamhub-dev/teamhub/internal/realtime"
	"github.com/teamhub-dev/teamhub/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrTaskTitleRequired = errors.New("task title is required")
	// ErrInvalidAssignee is returned when the assignee is not owner-or-member
	// of the task's project at assignment time. The check runs at create and
	// update only; membership changes afterwards do not unassign.
	ErrInvalidAssignee = errors.New("Assignee is not a member of this project")
)

// TaskService handles task business logic.
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	broadcaster *realtime.Broadcaster
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, broadcaster *realtime.Broadcaster) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		broadcaster: broadcaster,
	}
}

// CreateTaskInput represents input for creating a task.
type CreateTaskInput struct {
	ProjectID   uint64
	CreatorID   uint64
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	DueDate     *time.Time
	Tags        []string
	AssigneeID  *uint64
}

// CreateTask creates a task in a project the caller can access (enforced
// upstream). An assignee, if provided, must already be owner-or-member.
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTaskTitleRequired
	}

	if input.AssigneeID != nil {
		if err := s.ensureProjectMember(input.ProjectID, *input.AssigneeID); err != nil {
			return nil, err
		}
	}

	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}

	task := &models.Task{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		ProjectID:   input.ProjectID,
		CreatorID:   input.CreatorID,
		AssigneeID:  input.AssigneeID,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		Tags:        input.Tags,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	created, err := s.taskRepo.FindByID(task.ID, "Creator", "Assignee")
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}

	s.broadcaster.Publish(ctx, task.ProjectID, "task.created", created)

	return created, nil
}

// ListTasks returns one page of a project's tasks.
func (s *TaskService) ListTasks(filter repository.TaskFilter, opts repository.ListOptions) (*repository.ListResult[models.Task], error) {
	return s.taskRepo.List(filter, opts)
}

// ListAssignedTasks returns one page of tasks assigned to the user, across
// every project. The assignee is pinned here so a caller-supplied filter
// cannot widen the listing to someone else's tasks.
func (s *TaskService) ListAssignedTasks(userID uint64, filter repository.TaskFilter, opts repository.ListOptions) (*repository.ListResult[models.Task], error) {
	filter.ProjectID = 0
	filter.AssigneeID = &userID
	return s.taskRepo.List(filter, opts)
}

// GetTask returns a task with related data.
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Creator", "Assignee", "Project")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// UpdateTaskInput represents input for updating a task. Pointer fields are
// applied only when set; Clear* flags reset the optional fields.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	DueDate       *time.Time
	ClearDueDate  bool
	AssigneeID    *uint64
	ClearAssignee bool
	Tags          []string
}

// UpdateTask applies changes to a task, re-validating the assignee rule when
// the assignee changes.
func (s *TaskService) UpdateTask(ctx context.Context, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTaskTitleRequired
		}
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.Tags != nil {
		task.Tags = input.Tags
	}
	if input.ClearAssignee {
		task.AssigneeID = nil
	} else if input.AssigneeID != nil {
		if err := s.ensureProjectMember(task.ProjectID, *input.AssigneeID); err != nil {
			return nil, err
		}
		task.AssigneeID = input.AssigneeID
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	updated, err := s.taskRepo.FindByID(task.ID, "Creator", "Assignee")
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}

	s.broadcaster.Publish(ctx, task.ProjectID, "task.updated", updated)

	return updated, nil
}

// UpdateTaskStatus moves a task to a new status, leaving everything else
// untouched.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, taskID uint64, status models.TaskStatus) (*models.Task, error) {
	return s.UpdateTask(ctx, taskID, UpdateTaskInput{Status: &status})
}

// DeleteTask soft-deletes a task. Any user with project access may delete;
// there is no per-task ownership.
func (s *TaskService) DeleteTask(ctx context.Context, taskID uint64) error {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.broadcaster.Publish(ctx, task.ProjectID, "task.deleted", map[string]uint64{"task_id": taskID})

	return nil
}

// ensureProjectMember verifies the user is owner-or-member of the project.
// The check and the later write are separate operations; a concurrent
// membership change in between is accepted.
func (s *TaskService) ensureProjectMember(projectID, userID uint64) error {
	project, err := s.projectRepo.FindByID(projectID, "Members")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}
	if !project.HasMember(userID) {
		return ErrInvalidAssignee
	}
	return nil
}
