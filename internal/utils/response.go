package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teamhub-dev/teamhub/internal/repository"
)

// Response is the uniform success envelope returned by every endpoint.
type Response struct {
	Success    bool                   `json:"success"`
	Message    string                 `json:"message,omitempty"`
	Data       interface{}            `json:"data,omitempty"`
	Pagination *repository.Pagination `json:"pagination,omitempty"`
}

// OK sends a 200 response with the uniform envelope.
func OK(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message, Data: data})
}

// Created sends a 201 response with the uniform envelope.
func Created(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

// Paginated sends a 200 response with list data and pagination metadata.
func Paginated(c *gin.Context, data interface{}, p repository.Pagination) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data, Pagination: &p})
}
