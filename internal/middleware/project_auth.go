package middleware

import (
	"github.com/gin-gonic/gin"
	apierrors "github.com/teamhub-dev/teamhub/internal/errors"
	"github.com/teamhub-dev/teamhub/internal/models"
	"github.com/teamhub-dev/teamhub/internal/repository"
)

const (
	contextKeyProject = "project"
	contextKeyTask    = "task"
	contextKeyThread  = "thread"
)

// RequireProjectAccess checks that the caller is the project's owner or a
// member. Non-members get a 404, not a 403, so the project's existence is
// never leaked.
func RequireProjectAccess(projects repository.ProjectRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := repository.ParseID(c.Param("id"))
		if err != nil {
			apierrors.BadRequest(c, apierrors.ErrCodeInvalidIdentifier, "Invalid project ID")
			c.Abort()
			return
		}

		principal, exists := GetCurrentUser(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		project, err := projects.FindByID(projectID, "Members")
		if err != nil {
			apierrors.NotFound(c, "Project not found")
			c.Abort()
			return
		}

		if !project.IsActive || !project.HasMember(principal.ID) {
			apierrors.NotFound(c, "Project not found")
			c.Abort()
			return
		}

		c.Set(contextKeyProject, *project)
		c.Next()
	}
}

// RequireProjectOwner checks that the caller owns the project loaded by
// RequireProjectAccess. Members who are not the owner get a 403.
func RequireProjectOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		project, ok := GetProject(c)
		if !ok {
			apierrors.Forbidden(c, "Project access required")
			c.Abort()
			return
		}

		principal, exists := GetCurrentUser(c)
		if !exists || project.OwnerID != principal.ID {
			apierrors.Forbidden(c, "Only the project owner can perform this action")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetProject retrieves the project loaded by RequireProjectAccess.
func GetProject(c *gin.Context) (models.Project, bool) {
	value, exists := c.Get(contextKeyProject)
	if !exists {
		return models.Project{}, false
	}
	project, ok := value.(models.Project)
	return project, ok
}
