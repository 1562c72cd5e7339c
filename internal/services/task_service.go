package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/yukikurage/taskmanager-api/internal/constants"
	"github.com/yukikurage/taskmanager-api/internal/models"
	"github.com/yukikurage/taskmanager-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrTitleRequired          = errors.New("title is required")
	ErrInvalidStatus          = errors.New("invalid task status")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAISuggestionFailed     = errors.New("AI task suggestion failed")
)

// TaskService handles task business logic. Every operation is scoped to the
// authenticated user passed as its first argument.
type TaskService struct {
	taskRepo  repository.TaskRepository
	aiService *AIService
}

// NewTaskService creates a new TaskService. aiService may be nil.
func NewTaskService(taskRepo repository.TaskRepository, aiService *AIService) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		aiService: aiService,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Status   *models.TaskStatus
	Search   string
	Page     int
	PageSize int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description *string
	Status      models.TaskStatus
}

// UpdateTaskInput represents a partial update. Nil fields are left unchanged;
// ClearDescription removes the description.
type UpdateTaskInput struct {
	Title            *string
	Description      *string
	ClearDescription bool
	Status           *models.TaskStatus
}

// ListTasks returns one page of the user's tasks, newest first, and the total
// number of matching tasks.
func (s *TaskService) ListTasks(ctx context.Context, userID string, input ListTasksInput) ([]models.Task, int64, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}

	tasks, total, err := s.taskRepo.List(ctx, repository.TaskFilter{
		UserID:   userID,
		Status:   input.Status,
		Search:   strings.TrimSpace(input.Search),
		Page:     input.Page,
		PageSize: input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// CreateTask creates a task owned by userID
func (s *TaskService) CreateTask(ctx context.Context, userID string, input CreateTaskInput) (*models.Task, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}
	if input.Status == "" {
		input.Status = models.TaskStatusPending
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		UserID:      userID,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// GetTask returns a task owned by userID
func (s *TaskService) GetTask(ctx context.Context, userID, taskID string) (*models.Task, error) {
	return s.findOwned(ctx, userID, taskID)
}

// UpdateTask applies a partial update to a task owned by userID
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID string, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.findOwned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrTitleRequired
		}
		task.Title = *input.Title
	}
	if input.ClearDescription {
		task.Description = nil
	} else if input.Description != nil {
		task.Description = input.Description
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		task.Status = *input.Status
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// DeleteTask deletes a task owned by userID
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID string) error {
	if _, err := s.findOwned(ctx, userID, taskID); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, userID, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// ToggleTaskStatus flips PENDING to COMPLETED and anything else to PENDING
func (s *TaskService) ToggleTaskStatus(ctx context.Context, userID, taskID string) (*models.Task, error) {
	task, err := s.findOwned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	task.Status = task.Status.Toggled()

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to toggle status: %w", err)
	}

	return task, nil
}

// GenerateTasks asks the AI service for tasks found in text. The suggestions
// are trimmed to the task field bounds and are not persisted.
func (s *TaskService) GenerateTasks(ctx context.Context, userID, text string) ([]SuggestedTask, error) {
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}

	suggestions, err := s.aiService.SuggestTasks(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAISuggestionFailed, err)
	}

	valid := make([]SuggestedTask, 0, len(suggestions))
	for _, suggestion := range suggestions {
		title := truncate(strings.TrimSpace(suggestion.Title), constants.MaxTitleLength)
		if title == "" {
			continue
		}

		valid = append(valid, SuggestedTask{
			Title:       title,
			Description: truncate(strings.TrimSpace(suggestion.Description), constants.MaxDescriptionLength),
		})
		if len(valid) == constants.MaxAIGeneratedTasks {
			break
		}
	}

	slog.DebugContext(ctx, "generated task suggestions", "user_id", userID, "received", len(suggestions), "returned", len(valid))
	return valid, nil
}

// findOwned loads a task that belongs to userID. A missing task and a task
// owned by another user both return ErrTaskNotFound.
func (s *TaskService) findOwned(ctx context.Context, userID, taskID string) (*models.Task, error) {
	if userID == "" || taskID == "" {
		return nil, ErrTaskNotFound
	}

	task, err := s.taskRepo.FindOwned(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// truncate cuts s to at most limit runes
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
