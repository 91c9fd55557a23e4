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

// ThreadHandler handles discussion thread endpoints.
type ThreadHandler struct {
	threadService *services.ThreadService
	logger        *zap.Logger
}

// NewThreadHandler creates a new ThreadHandler.
func NewThreadHandler(threadService *services.ThreadService, logger *zap.Logger) *ThreadHandler {
	return &ThreadHandler{
		threadService: threadService,
		logger:        logger,
	}
}

// ListThreads returns one page of a project's discussion threads.
func (h *ThreadHandler) ListThreads(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.NotFound(c, "Project not found")
		return
	}

	result, err := h.threadService.ListThreads(project.ID, utils.GetListOptions(c))
	if err != nil {
		h.respondThreadError(c, err)
		return
	}

	utils.Paginated(c, dto.ToThreadDTOs(result.Data), result.Pagination)
}

// CreateThread starts a discussion thread in the project.
func (h *ThreadHandler) CreateThread(c *gin.Context) {
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

	type CreateThreadRequest struct {
		Title   string `json:"title" binding:"required"`
		Content string `json:"content"`
	}

	var req CreateThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, "Thread title is required", nil)
		return
	}

	thread, err := h.threadService.CreateThread(c.Request.Context(), services.CreateThreadInput{
		ProjectID: project.ID,
		AuthorID:  principal.ID,
		Title:     req.Title,
		Content:   req.Content,
	})
	if err != nil {
		h.respondThreadError(c, err)
		return
	}

	utils.Created(c, dto.ToThreadDTO(*thread), "Thread created successfully")
}

// GetThread returns the thread with its author and replies expanded.
func (h *ThreadHandler) GetThread(c *gin.Context) {
	thread, ok := middleware.GetThread(c)
	if !ok {
		apierrors.NotFound(c, "Thread not found")
		return
	}

	full, err := h.threadService.GetThread(thread.ID)
	if err != nil {
		h.respondThreadError(c, err)
		return
	}

	utils.OK(c, dto.ToThreadDTO(*full), "Thread retrieved successfully")
}

// AddReply appends a reply to the thread.
func (h *ThreadHandler) AddReply(c *gin.Context) {
	thread, ok := middleware.GetThread(c)
	if !ok {
		apierrors.NotFound(c, "Thread not found")
		return
	}

	principal, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type AddReplyRequest struct {
		Content string `json:"content" binding:"required"`
	}

	var req AddReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, "Reply content is required", nil)
		return
	}

	reply, err := h.threadService.AddReply(c.Request.Context(), thread.ID, principal.ID, req.Content)
	if err != nil {
		h.respondThreadError(c, err)
		return
	}

	utils.Created(c, dto.ToReplyDTO(*reply), "Reply added successfully")
}

func (h *ThreadHandler) respondThreadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrThreadTitleRequired):
		apierrors.ValidationFailed(c, "Thread title is required", nil)
	case errors.Is(err, services.ErrReplyContentRequired):
		apierrors.ValidationFailed(c, "Reply content is required", nil)
	case errors.Is(err, services.ErrThreadNotFound):
		apierrors.NotFound(c, "Thread not found")
	case errors.Is(err, repository.ErrUnknownSortField):
		apierrors.ValidationFailed(c, "Unknown sort field", nil)
	default:
		logUnexpected(h.logger, c, err)
		apierrors.Respond(c, apierrors.FromPersistence(err))
	}
}
