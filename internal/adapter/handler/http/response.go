package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error string `json:"error" example:"User not found"`
}

type validationErrorResponse struct {
	Errors []string `json:"errors" example:"Name is required,Age must be at least 1"`
}

type messageResponse struct {
	Message string `json:"message" example:"User deleted successfully"`
}

type averageAgeResponse struct {
	AverageAge float64 `json:"averageAge" example:"27.5"`
}

type statusResponse struct {
	Status string `json:"status" example:"ok"`
}

const (
	msgServerError   = "Server error"
	msgUserNotFound  = "User not found"
	msgInvalidUserID = "Invalid user ID"
	msgEmailExists   = "Email already exists"
	msgInvalidBody   = "Invalid request body"
	msgUserDeleted   = "User deleted successfully"
)

func newErrorResponse(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, errorResponse{
		Error: message,
	})
}

func newValidationErrorResponse(c *gin.Context, messages []string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, validationErrorResponse{
		Errors: messages,
	})
}
