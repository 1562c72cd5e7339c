package repository

import (
	"context"

	"github.com/yukikurage/taskmanager-api/internal/models"
)

// TaskRepository defines the interface for task data access.
// Every lookup by task ID is scoped to the owning user.
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindOwned finds a task by ID that belongs to userID
	FindOwned(ctx context.Context, userID, taskID string) (*models.Task, error)

	// List retrieves a user's tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// Update saves changes to a task
	Update(ctx context.Context, task *models.Task) error

	// Delete soft deletes a task owned by userID
	Delete(ctx context.Context, userID, taskID string) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	UserID   string
	Status   *models.TaskStatus
	Search   string
	Page     int
	PageSize int
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByEmail finds a user by exact email match
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}
