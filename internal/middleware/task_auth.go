package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apierrors "github.com/yukikurage/taskmanager-api/internal/errors"
)

// MsgTaskNotFound is shared with the task handlers so that a malformed id
// and a task owned by someone else look the same.
const MsgTaskNotFound = "Task not found"

// RequireTaskID rejects task ids that cannot exist before any lookup runs.
// Ownership is enforced by the task service.
func RequireTaskID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := uuid.Validate(c.Param("id")); err != nil {
			apierrors.NotFound(c, MsgTaskNotFound)
			return
		}
		c.Next()
	}
}
