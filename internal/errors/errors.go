package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskmanager-api/internal/dto"
)

// Default messages
const (
	MsgValidation         = "Validation error"
	MsgUnauthorized       = "Authentication required"
	MsgNotFound           = "Resource not found"
	MsgInvalidRequest     = "Invalid request"
	MsgInternalError      = "Internal server error"
	MsgServiceUnavailable = "Service temporarily unavailable"
	MsgBadGateway         = "Upstream service error"
)

// RespondWithError sends a failed envelope and aborts the handler chain
func RespondWithError(c *gin.Context, statusCode int, message string, fieldErrors []dto.FieldError) {
	c.AbortWithStatusJSON(statusCode, dto.Response{
		Success: false,
		Message: message,
		Errors:  fieldErrors,
	})
}

// Helper functions for common error responses

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, orDefault(message, MsgInvalidRequest), nil)
}

// ValidationFailed sends a 400 response listing the invalid fields
func ValidationFailed(c *gin.Context, fieldErrors []dto.FieldError) {
	RespondWithError(c, http.StatusBadRequest, MsgValidation, fieldErrors)
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	RespondWithError(c, http.StatusUnauthorized, orDefault(message, MsgUnauthorized), nil)
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	RespondWithError(c, http.StatusNotFound, orDefault(message, MsgNotFound), nil)
}

// InternalError sends a 500 response. The message never carries the cause.
func InternalError(c *gin.Context) {
	RespondWithError(c, http.StatusInternalServerError, MsgInternalError, nil)
}

// BadGateway sends a 502 response
func BadGateway(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadGateway, orDefault(message, MsgBadGateway), nil)
}

// ServiceUnavailable sends a 503 response
func ServiceUnavailable(c *gin.Context, message string) {
	RespondWithError(c, http.StatusServiceUnavailable, orDefault(message, MsgServiceUnavailable), nil)
}

func orDefault(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}
