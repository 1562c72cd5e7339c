package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/yukikurage/taskmanager-api/internal/dto"
	apierrors "github.com/yukikurage/taskmanager-api/internal/errors"
	"github.com/yukikurage/taskmanager-api/internal/middleware"
	"github.com/yukikurage/taskmanager-api/internal/models"
	"github.com/yukikurage/taskmanager-api/internal/services"
	"github.com/yukikurage/taskmanager-api/internal/utils"
	"github.com/yukikurage/taskmanager-api/internal/validation"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

type listTasksQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=PENDING COMPLETED"`
	Search string `form:"search"`
}

type createTaskRequest struct {
	Title       string             `json:"title" binding:"required,max=200"`
	Description *string            `json:"description" binding:"omitnil,max=1000"`
	Status      *models.TaskStatus `json:"status" binding:"omitnil,oneof=PENDING COMPLETED"`
}

type updateTaskRequest struct {
	Title       *string            `json:"title" binding:"omitnil,min=1,max=200"`
	Description *string            `json:"description" binding:"omitnil,max=1000"`
	Status      *models.TaskStatus `json:"status" binding:"omitnil,oneof=PENDING COMPLETED"`
}

type generateTasksRequest struct {
	Text string `json:"text" binding:"required,max=10000"`
}

// ListTasks returns a page of the current user's tasks
// Supports status, search, page and limit query parameters
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var query listTasksQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		apierrors.ValidationFailed(c, validation.Translate(err))
		return
	}

	params := utils.GetPaginationParams(c)

	input := services.ListTasksInput{
		Search:   query.Search,
		Page:     params.Page,
		PageSize: params.Limit,
	}
	if query.Status != "" {
		status := models.TaskStatus(query.Status)
		input.Status = &status
	}

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), userID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	respond(c, http.StatusOK, "Tasks retrieved successfully", dto.ToTaskListResponse(tasks, params.Page, params.Limit, total))
}

// CreateTask creates a task owned by the current user
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, validation.Translate(err))
		return
	}

	input := services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		input.Status = *req.Status
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), userID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Task created successfully", dto.ToTaskDTO(*task))
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondTaskError(c, err)
		return
	}

	respond(c, http.StatusOK, "Task retrieved successfully", dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update. "description": null clears the
// description; omitted fields are left unchanged.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	// An empty body is an empty patch
	var req updateTaskRequest
	var raw map[string]json.RawMessage
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
			apierrors.ValidationFailed(c, validation.Translate(err))
			return
		}

		// Parse raw JSON to detect which fields were sent as null
		if err := c.ShouldBindBodyWith(&raw, binding.JSON); err != nil {
			apierrors.ValidationFailed(c, validation.Translate(err))
			return
		}
	}

	var nullErrors []dto.FieldError
	if isNull(raw, "title") {
		nullErrors = append(nullErrors, dto.FieldError{Field: "title", Message: "Title must be a string"})
	}
	if isNull(raw, "status") {
		nullErrors = append(nullErrors, dto.FieldError{Field: "status", Message: "Status must be one of: PENDING, COMPLETED"})
	}
	if len(nullErrors) > 0 {
		apierrors.ValidationFailed(c, nullErrors)
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), userID, c.Param("id"), services.UpdateTaskInput{
		Title:            req.Title,
		Description:      req.Description,
		ClearDescription: isNull(raw, "description"),
		Status:           req.Status,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	respond(c, http.StatusOK, "Task updated successfully", dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task owned by the current user
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondTaskError(c, err)
		return
	}

	respond(c, http.StatusOK, "Task deleted successfully", nil)
}

// ToggleTaskStatus flips a task between PENDING and COMPLETED
func (h *TaskHandler) ToggleTaskStatus(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	task, err := h.taskService.ToggleTaskStatus(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondTaskError(c, err)
		return
	}

	respond(c, http.StatusOK, "Task status toggled successfully", dto.ToTaskDTO(*task))
}

// GenerateTasks suggests tasks extracted from free text. Nothing is saved.
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req generateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, validation.Translate(err))
		return
	}

	suggestions, err := h.taskService.GenerateTasks(c.Request.Context(), userID, req.Text)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	items := make([]dto.SuggestedTaskDTO, len(suggestions))
	for i, s := range suggestions {
		items[i] = dto.SuggestedTaskDTO{Title: s.Title, Description: s.Description}
	}

	respond(c, http.StatusOK, "Tasks generated successfully", dto.SuggestedTasksResponse{Tasks: items})
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, middleware.MsgTaskNotFound)
	case errors.Is(err, services.ErrTitleRequired):
		apierrors.ValidationFailed(c, []dto.FieldError{{Field: "title", Message: "Title is required"}})
	case errors.Is(err, services.ErrInvalidStatus):
		apierrors.ValidationFailed(c, []dto.FieldError{{Field: "status", Message: "Status must be one of: PENDING, COMPLETED"}})
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "Task suggestions are not configured")
	case errors.Is(err, services.ErrAISuggestionFailed):
		slog.WarnContext(c.Request.Context(), "task suggestion failed", "error", err)
		apierrors.BadGateway(c, "Failed to generate tasks")
	default:
		slog.ErrorContext(c.Request.Context(), "task request failed", "path", c.FullPath(), "error", err)
		apierrors.InternalError(c)
	}
}

func isNull(raw map[string]json.RawMessage, key string) bool {
	value, ok := raw[key]
	return ok && string(value) == "null"
}
