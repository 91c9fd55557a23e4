package utils

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/teamhub-dev/teamhub/internal/constants"
	"github.com/teamhub-dev/teamhub/internal/repository"
)

// GetListOptions extracts pagination, sort and search parameters from the
// request. Page and limit are clamped here and again in the repository, so a
// hand-built ListOptions cannot bypass the bounds.
func GetListOptions(c *gin.Context) repository.ListOptions {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(constants.MinPage)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultPageSize)))

	if page < constants.MinPage {
		page = constants.MinPage
	}
	if limit < 1 {
		limit = constants.DefaultPageSize
	}
	if limit > constants.MaxPageSize {
		limit = constants.MaxPageSize
	}

	order := c.DefaultQuery("order", "desc")
	if order != "asc" {
		order = "desc"
	}

	return repository.ListOptions{
		Page:   page,
		Limit:  limit,
		Sort:   c.Query("sort"),
		Order:  order,
		Search: strings.TrimSpace(c.Query("search")),
	}
}
