package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskmanager-api/internal/middleware"
	"github.com/yukikurage/taskmanager-api/internal/validation"
)

// RouterConfig holds everything the HTTP routes depend on.
type RouterConfig struct {
	Auth     *AuthHandler
	Tasks    *TaskHandler
	Health   *HealthHandler
	Verifier middleware.AccessVerifier
	Logger   *slog.Logger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(cfg RouterConfig) *gin.Engine {
	validation.Setup()

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogger(cfg.Logger))
	}

	RegisterRoutes(r, cfg)
	return r
}

// RegisterRoutes mounts the auth, task and health routes on r.
func RegisterRoutes(r gin.IRouter, cfg RouterConfig) {
	requireAuth := middleware.RequireAuth(cfg.Verifier)

	if cfg.Health != nil {
		r.GET("/health", cfg.Health.Health)
	}

	// Auth routes (public except /me)
	auth := r.Group("/auth")
	{
		auth.POST("/register", cfg.Auth.Register)
		auth.POST("/login", cfg.Auth.Login)
		auth.POST("/refresh", cfg.Auth.Refresh)
		auth.POST("/logout", cfg.Auth.Logout)
		auth.GET("/me", requireAuth, cfg.Auth.GetCurrentUser)
	}

	// Task routes (protected)
	tasks := r.Group("/tasks")
	tasks.Use(requireAuth)
	{
		tasks.GET("", cfg.Tasks.ListTasks)
		tasks.POST("", cfg.Tasks.CreateTask)
		tasks.POST("/generate", cfg.Tasks.GenerateTasks)
		tasks.GET("/:id", middleware.RequireTaskID(), cfg.Tasks.GetTask)
		tasks.PATCH("/:id", middleware.RequireTaskID(), cfg.Tasks.UpdateTask)
		tasks.DELETE("/:id", middleware.RequireTaskID(), cfg.Tasks.DeleteTask)
		tasks.PATCH("/:id/toggle", middleware.RequireTaskID(), cfg.Tasks.ToggleTaskStatus)
	}
}
