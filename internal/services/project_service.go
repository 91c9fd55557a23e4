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
	ErrProjectNotFound       = errors.New("project not found")
	ErrProjectNameRequired   = errors.New("project name is required")
	ErrAlreadyProjectMember  = errors.New("User is already a member of this project")
	ErrCannotRemoveOwner     = errors.New("Cannot remove the project owner")
	ErrProjectMemberNotFound = errors.New("project member not found")
	ErrMemberUserNotEligible = errors.New("user not found or inactive")
)

// ProjectService provides business logic for project and membership operations.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	broadcaster *realtime.Broadcaster
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository, broadcaster *realtime.Broadcaster) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
		broadcaster: broadcaster,
	}
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	Name        string
	Description string
	OwnerID     uint64
}

// CreateProject creates a project owned by the caller. The repository
// guarantees the owner lands in the member set exactly once.
func (s *ProjectService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrProjectNameRequired
	}

	project := &models.Project{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		OwnerID:     input.OwnerID,
		IsActive:    true,
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return s.projectRepo.FindByID(project.ID, "Owner", "Members", "Members.User")
}

// ListProjects returns projects the user owns or belongs to.
func (s *ProjectService) ListProjects(userID uint64, opts repository.ListOptions) (*repository.ListResult[models.Project], error) {
	return s.projectRepo.ListForUser(userID, opts)
}

// GetProject returns a project with its owner and members expanded.
func (s *ProjectService) GetProject(projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID, "Owner", "Members", "Members.User")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// UpdateProjectInput represents optional project changes.
type UpdateProjectInput struct {
	Name        *string
	Description *string
}

// UpdateProject applies changes to a project. Ownership is enforced upstream.
func (s *ProjectService) UpdateProject(projectID uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.GetProject(projectID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrProjectNameRequired
		}
		project.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		project.Description = *input.Description
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return project, nil
}

// DeleteProject soft-deletes a project by flipping its active flag. The row
// is never physically removed.
func (s *ProjectService) DeleteProject(projectID uint64) error {
	project, err := s.GetProject(projectID)
	if err != nil {
		return err
	}

	project.IsActive = false
	if err := s.projectRepo.Update(project); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// AddMember adds a user to the project's member set. Only called for the
// owner (enforced upstream); the target must exist and be active, and
// duplicate membership is a conflict.
func (s *ProjectService) AddMember(ctx context.Context, projectID, targetUserID uint64) (*models.ProjectMember, error) {
	target, err := s.userRepo.FindByID(targetUserID)
	if err != nil || !target.IsActive {
		return nil, ErrMemberUserNotEligible
	}

	if _, err := s.projectRepo.FindMember(projectID, targetUserID); err == nil {
		return nil, ErrAlreadyProjectMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	member := &models.ProjectMember{
		ProjectID: projectID,
		UserID:    targetUserID,
		Role:      models.RoleMember,
		JoinedAt:  time.Now(),
	}

	if err := s.projectRepo.AddMember(member); err != nil {
		// The composite primary key backstops the check-then-add race.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyProjectMember
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	s.broadcaster.Publish(ctx, projectID, "project.member_added", member)

	return member, nil
}

// RemoveMember removes a user from the project. The owner cannot remove
// themselves; transfer or delete the project instead.
func (s *ProjectService) RemoveMember(ctx context.Context, projectID, targetUserID uint64) error {
	project, err := s.GetProject(projectID)
	if err != nil {
		return err
	}

	if targetUserID == project.OwnerID {
		return ErrCannotRemoveOwner
	}

	if _, err := s.projectRepo.FindMember(projectID, targetUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectMemberNotFound
		}
		return fmt.Errorf("failed to find project member: %w", err)
	}

	if err := s.projectRepo.RemoveMember(projectID, targetUserID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	s.broadcaster.Publish(ctx, projectID, "project.member_removed", map[string]uint64{"user_id": targetUserID})

	return nil
}
