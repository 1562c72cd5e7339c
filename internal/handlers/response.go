package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskmanager-api/internal/dto"
)

// respond sends a successful envelope
func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, dto.Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}
