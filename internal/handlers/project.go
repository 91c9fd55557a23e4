package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/teamhub-dev/teamhub/internal/dto"
	apierrors "github.com/teamhub-dev/teamhub/internal/errors"
	"github.com/teamhub-dev/teamhub/internal/middleware"
	"github.com/teamhub-dev/teamhub/internal/repository"
	"github.com/teamhub-dev/teamhub/internal/services"
	"github.com/teamhub-dev/teamhub/internal/utils"
	"go.uber.org/zap"
)

// ProjectHandler handles project and membership endpoints.
type ProjectHandler struct {
	projectService *services.ProjectService
	logger         *zap.Logger
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		logger:         logger,
	}
}

// ListProjects returns one page of projects the caller owns or belongs to.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	principal, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	result, err := h.projectService.ListProjects(principal.ID, utils.GetListOptions(c))
	if err != nil {
		h.respondProjectError(c, err)
		return
	}

	utils.Paginated(c, dto.ToProjectDTOs(result.Data), result.Pagination)
}

// CreateProject creates a project owned by the caller.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	principal, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateProjectRequest struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, "Project name is required", nil)
		return
	}

	project, err := h.projectService.CreateProject(services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     principal.ID,
	})
	if err != nil {
		h.respondProjectError(c, err)
		return
	}

	utils.Created(c, dto.ToProjectDTO(*project), "Project created successfully")
}

// GetProject returns the project with owner and members expanded.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.NotFound(c, "Project not found")
		return
	}

	// Reload through the service so Owner and Members.User come back expanded.
	full, err := h.projectService.GetProject(project.ID)
	if err != nil {
		h.respondProjectError(c, err)
		return
	}

	utils.OK(c, dto.ToProjectDTO(*full), "Project retrieved successfully")
}

// UpdateProject applies changes to a project. Owner only.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.NotFound(c, "Project not found")
		return
	}

	type UpdateProjectRequest struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, "Invalid request body", nil)
		return
	}

	updated, err := h.projectService.UpdateProject(project.ID, services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.respondProjectError(c, err)
		return
	}

	utils.OK(c, dto.ToProjectDTO(*updated), "Project updated successfully")
}

// DeleteProject deactivates a project. Owner only.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.NotFound(c, "Project not found")
		return
	}

	if err := h.projectService.DeleteProject(project.ID); err != nil {
		h.respondProjectError(c, err)
		return
	}

	utils.OK(c, nil, "Project deleted successfully")
}

// AddMember adds a user to the project. Owner only.
func (h *ProjectHandler) AddMember(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.NotFound(c, "Project not found")
		return
	}

	type AddMemberRequest struct {
		UserID uint64 `json:"userId" binding:"required"`
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, "User ID is required", nil)
		return
	}

	if _, err := h.projectService.AddMember(c.Request.Context(), project.ID, req.UserID); err != nil {
		h.respondProjectError(c, err)
		return
	}

	full, err := h.projectService.GetProject(project.ID)
	if err != nil {
		h.respondProjectError(c, err)
		return
	}

	utils.Created(c, dto.ToProjectDTO(*full), "Member added successfully")
}

// RemoveMember removes a user from the project. Owner only; the owner
// themselves cannot be removed.
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.NotFound(c, "Project not found")
		return
	}

	targetID, err := repository.ParseID(c.Param("userId"))
	if err != nil {
		apierrors.BadRequest(c, apierrors.ErrCodeInvalidIdentifier, "Invalid user ID")
		return
	}

	if err := h.projectService.RemoveMember(c.Request.Context(), project.ID, targetID); err != nil {
		h.respondProjectError(c, err)
		return
	}

	utils.OK(c, nil, "Member removed successfully")
}

func (h *ProjectHandler) respondProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNameRequired):
		apierrors.ValidationFailed(c, "Project name is required", nil)
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, "Project not found")
	case errors.Is(err, services.ErrMemberUserNotEligible):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrAlreadyProjectMember):
		apierrors.Conflict(c, "User is already a member of this project")
	case errors.Is(err, services.ErrProjectMemberNotFound):
		apierrors.NotFound(c, "User is not a member of this project")
	case errors.Is(err, services.ErrCannotRemoveOwner):
		apierrors.BadRequest(c, apierrors.ErrCodeInvalidOperation, "Cannot remove the project owner")
	case errors.Is(err, repository.ErrUnknownSortField):
		apierrors.ValidationFailed(c, "Unknown sort field", nil)
	default:
		logUnexpected(h.logger, c, err)
		apierrors.Respond(c, apierrors.FromPersistence(err))
	}
}
