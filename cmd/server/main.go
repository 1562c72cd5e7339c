package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yukikurage/taskmanager-api/internal/auth"
	"github.com/yukikurage/taskmanager-api/internal/config"
	"github.com/yukikurage/taskmanager-api/internal/database"
	"github.com/yukikurage/taskmanager-api/internal/handlers"
	"github.com/yukikurage/taskmanager-api/internal/repository"
	"github.com/yukikurage/taskmanager-api/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Error("failed to connect to database", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("failed to get database handle", "error", err)
		os.Exit(1)
	}

	// Optional token denylist
	var tokenOpts []auth.TokenOption
	var redisClient *redis.Client
	stopSweeper := func() {}
	switch cfg.TokenDenylist {
	case config.DenylistRedis:
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		denylist := auth.NewRedisDenylist(redisClient, "")
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := denylist.Ping(pingCtx)
		cancel()
		if err != nil {
			logger.Error("failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}

		tokenOpts = append(tokenOpts, auth.WithDenylist(denylist))
		logger.Info("token revocation enabled", "denylist", cfg.TokenDenylist, "addr", cfg.RedisAddr)
	case config.DenylistMemory:
		denylist := auth.NewMemoryDenylist()
		sweepCtx, cancel := context.WithCancel(context.Background())
		go denylist.RunSweeper(sweepCtx, cfg.DenylistSweepInterval)
		stopSweeper = cancel

		tokenOpts = append(tokenOpts, auth.WithDenylist(denylist))
		logger.Info("token revocation enabled", "denylist", cfg.TokenDenylist, "sweep_interval", cfg.DenylistSweepInterval)
	}

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.RefreshSecret,
		AccessTTL:     cfg.AccessTokenExpiry,
		RefreshTTL:    cfg.RefreshTokenExpiry,
		Issuer:        cfg.JWTIssuer,
	}, tokenOpts...)
	if err != nil {
		logger.Error("failed to create token service", "error", err)
		os.Exit(1)
	}

	// Initialize AI service
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	authService := services.NewAuthService(repository.NewUserRepository(db), auth.NewPasswordHasher(), tokens)
	taskService := services.NewTaskService(repository.NewTaskRepository(db), aiService)

	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:     handlers.NewAuthHandler(authService),
		Tasks:    handlers.NewTaskHandler(taskService),
		Health:   handlers.NewHealthHandler(sqlDB),
		Verifier: tokens,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", srv.Addr, "mode", cfg.GinMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	resources := []resource{
		{name: "denylist sweeper", close: func() error {
			stopSweeper()
			return nil
		}},
	}
	if redisClient != nil {
		resources = append(resources, resource{name: "redis", close: redisClient.Close})
	}
	resources = append(resources, resource{name: "database", close: func() error {
		return database.Close(db)
	}})

	operations := map[string]gfshutdown.Operation{
		"http": shutdownOperation(logger, srv, resources...),
	}

	wait := gfshutdown.GracefulShutdown(context.Background(), cfg.ShutdownTimeout, operations)

	exitCode := <-wait
	logger.Info("server exited", "code", exitCode)
	os.Exit(exitCode)
}

// newLogger returns a text logger for development and a JSON logger in
// release mode.
func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsRelease() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
