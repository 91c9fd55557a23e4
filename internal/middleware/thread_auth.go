package middleware

import (
	"github.com/gin-gonic/gin"
	apierrors "github.com/teamhub-dev/teamhub/internal/errors"
	"github.com/teamhub-dev/teamhub/internal/models"
	"github.com/teamhub-dev/teamhub/internal/repository"
)

// RequireThreadAccess checks that the caller is owner-or-member of the
// thread's parent project, mirroring RequireTaskAccess.
func RequireThreadAccess(threads repository.ThreadRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		threadID, err := repository.ParseID(c.Param("id"))
		if err != nil {
			apierrors.BadRequest(c, apierrors.ErrCodeInvalidIdentifier, "Invalid thread ID")
			c.Abort()
			return
		}

		principal, exists := GetCurrentUser(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		thread, err := threads.FindByID(threadID, "Project", "Project.Members")
		if err != nil {
			apierrors.NotFound(c, "Thread not found")
			c.Abort()
			return
		}

		if !thread.Project.HasMember(principal.ID) {
			apierrors.NotFound(c, "Thread not found")
			c.Abort()
			return
		}

		c.Set(contextKeyThread, *thread)
		c.Next()
	}
}

// GetThread retrieves the thread loaded by RequireThreadAccess.
func GetThread(c *gin.Context) (models.Thread, bool) {
	value, exists := c.Get(contextKeyThread)
	if !exists {
		return models.Thread{}, false
	}
	thread, ok := value.(models.Thread)
	return thread, ok
}
