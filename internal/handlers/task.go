package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/teamhub-dev/teamhub/internal/dto"
	apierrors "github.com/teamhub-dev/teamhub/internal/errors"
	"github.com/teamhub-dev/teamhub/internal/middleware"
	"github.com/teamhub-dev/teamhub/internal/models"
	"github.com/teamhub-dev/teamhub/internal/repository"
	"github.com/teamhub-dev/teamhub/internal/services"
	"github.com/teamhub-dev/teamhub/internal/utils"
	"go.uber.org/zap"
)

// TaskHandler handles task endpoints.
type TaskHandler struct {
	taskService *services.TaskService
	logger      *zap.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// ListTasks returns one page of a project's tasks, optionally filtered by
// status, priority and assignee.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.NotFound(c, "Project not found")
		return
	}

	filter, ok := taskFilterFromQuery(c)
	if !ok {
		return
	}
	filter.ProjectID = project.ID

	result, err := h.taskService.ListTasks(filter, utils.GetListOptions(c))
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	utils.Paginated(c, dto.ToTaskDTOs(result.Data), result.Pagination)
}

// ListMyTasks returns one page of tasks assigned to the caller, across all
// of their projects.
func (h *TaskHandler) ListMyTasks(c *gin.Context) {
	principal, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	filter, ok := taskFilterFromQuery(c)
	if !ok {
		return
	}

	result, err := h.taskService.ListAssignedTasks(principal.ID, filter, utils.GetListOptions(c))
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	utils.Paginated(c, dto.ToTaskDTOs(result.Data), result.Pagination)
}

// taskFilterFromQuery reads the status, priority and assigneeId query
// parameters. On a bad value it writes the error response and reports false.
func taskFilterFromQuery(c *gin.Context) (repository.TaskFilter, bool) {
	var filter repository.TaskFilter

	if raw := c.Query("status"); raw != "" {
		status := models.TaskStatus(raw)
		switch status {
		case models.TaskStatusTodo, models.TaskStatusInProgress, models.TaskStatusDone:
			filter.Status = &status
		default:
			apierrors.ValidationFailed(c, "Invalid status filter", nil)
			return filter, false
		}
	}

	if raw := c.Query("priority"); raw != "" {
		priority := models.TaskPriority(raw)
		switch priority {
		case models.TaskPriorityLow, models.TaskPriorityMedium, models.TaskPriorityHigh:
			filter.Priority = &priority
		default:
			apierrors.ValidationFailed(c, "Invalid priority filter", nil)
			return filter, false
		}
	}

	if raw := c.Query("assigneeId"); raw != "" {
		assigneeID, err := repository.ParseID(raw)
		if err != nil {
			apierrors.BadRequest(c, apierrors.ErrCodeInvalidIdentifier, "Invalid assignee ID")
			return filter, false
		}
		filter.AssigneeID = &assigneeID
	}

	return filter, true
}

// CreateTask creates a task inside the project loaded by the access
// middleware.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.NotFound(c, "Project not found")
		return
	}

	principal, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTaskRequest struct {
		Title       string     `json:"title" binding:"required"`
		Description string     `json:"description"`
		Status      string     `json:"status"`
		Priority    string     `json:"priority"`
		DueDate     *time.Time `json:"due_date"`
		Tags        []string   `json:"tags"`
		AssigneeID  *uint64    `json:"assignee_id"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, "Task title is required", nil)
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		ProjectID:   project.ID,
		CreatorID:   principal.ID,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatus(req.Status),
		Priority:    models.TaskPriority(req.Priority),
		DueDate:     req.DueDate,
		Tags:        req.Tags,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	utils.Created(c, dto.ToTaskDTO(*task), "Task created successfully")
}

// GetTask returns the task loaded by the access middleware, with its creator
// and assignee expanded.
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.NotFound(c, "Task not found")
		return
	}

	full, err := h.taskService.GetTask(task.ID)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	utils.OK(c, dto.ToTaskDTO(*full), "Task retrieved successfully")
}

// UpdateTask applies changes to a task. Optional fields clear when the
// request sends an explicit null flag.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.NotFound(c, "Task not found")
		return
	}

	type UpdateTaskRequest struct {
		Title         *string    `json:"title"`
		Description   *string    `json:"description"`
		Status        *string    `json:"status"`
		Priority      *string    `json:"priority"`
		DueDate       *time.Time `json:"due_date"`
		ClearDueDate  bool       `json:"clear_due_date"`
		AssigneeID    *uint64    `json:"assignee_id"`
		ClearAssignee bool       `json:"clear_assignee"`
		Tags          []string   `json:"tags"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, "Invalid request body", nil)
		return
	}

	input := services.UpdateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		DueDate:       req.DueDate,
		ClearDueDate:  req.ClearDueDate,
		AssigneeID:    req.AssigneeID,
		ClearAssignee: req.ClearAssignee,
		Tags:          req.Tags,
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		input.Status = &status
	}
	if req.Priority != nil {
		priority := models.TaskPriority(*req.Priority)
		input.Priority = &priority
	}

	updated, err := h.taskService.UpdateTask(c.Request.Context(), task.ID, input)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	utils.OK(c, dto.ToTaskDTO(*updated), "Task updated successfully")
}

// UpdateTaskStatus moves a task to a new status.
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.NotFound(c, "Task not found")
		return
	}

	type UpdateStatusRequest struct {
		Status string `json:"status" binding:"required"`
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, "Status is required", nil)
		return
	}

	status := models.TaskStatus(req.Status)
	switch status {
	case models.TaskStatusTodo, models.TaskStatusInProgress, models.TaskStatusDone:
	default:
		apierrors.ValidationFailed(c, "Invalid status", nil)
		return
	}

	updated, err := h.taskService.UpdateTaskStatus(c.Request.Context(), task.ID, status)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	utils.OK(c, dto.ToTaskDTO(*updated), "Task status updated successfully")
}

// DeleteTask removes a task. Any member of the task's project may delete it.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.NotFound(c, "Task not found")
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), task.ID); err != nil {
		h.respondTaskError(c, err)
		return
	}

	utils.OK(c, nil, "Task deleted successfully")
}

func (h *TaskHandler) respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskTitleRequired):
		apierrors.ValidationFailed(c, "Task title is required", nil)
	case errors.Is(err, services.ErrInvalidAssignee):
		apierrors.BadRequest(c, apierrors.ErrCodeInvalidAssignee, "Assignee is not a member of this project")
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, "Project not found")
	case errors.Is(err, models.ErrValidation):
		apierrors.ValidationFailed(c, err.Error(), nil)
	case errors.Is(err, repository.ErrUnknownSortField):
		apierrors.ValidationFailed(c, "Unknown sort field", nil)
	default:
		logUnexpected(h.logger, c, err)
		apierrors.Respond(c, apierrors.FromPersistence(err))
	}
}
