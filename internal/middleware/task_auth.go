package middleware

import (
	"github.com/gin-gonic/gin"
	apierrors "github.com/teamhub-dev/teamhub/internal/errors"
	"github.com/teamhub-dev/teamhub/internal/models"
	"github.com/teamhub-dev/teamhub/internal/repository"
)

// RequireTaskAccess checks that the caller is owner-or-member of the task's
// parent project. Task operations have no ownership finer than that.
// Non-members get a 404 so the task's existence is never leaked.
func RequireTaskAccess(tasks repository.TaskRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := repository.ParseID(c.Param("id"))
		if err != nil {
			apierrors.BadRequest(c, apierrors.ErrCodeInvalidIdentifier, "Invalid task ID")
			c.Abort()
			return
		}

		principal, exists := GetCurrentUser(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		task, err := tasks.FindByID(taskID, "Project", "Project.Members")
		if err != nil {
			apierrors.NotFound(c, "Task not found")
			c.Abort()
			return
		}

		if !task.Project.HasMember(principal.ID) {
			apierrors.NotFound(c, "Task not found")
			c.Abort()
			return
		}

		c.Set(contextKeyTask, *task)
		c.Next()
	}
}

// GetTask retrieves the task loaded by RequireTaskAccess.
func GetTask(c *gin.Context) (models.Task, bool) {
	value, exists := c.Get(contextKeyTask)
	if !exists {
		return models.Task{}, false
	}
	task, ok := value.(models.Task)
	return task, ok
}
