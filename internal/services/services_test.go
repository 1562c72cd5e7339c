package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskmanager-api/internal/auth"
	"github.com/yukikurage/taskmanager-api/internal/config"
	"github.com/yukikurage/taskmanager-api/internal/database"
	"github.com/yukikurage/taskmanager-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testEnv struct {
	db          *gorm.DB
	tokens      *auth.TokenService
	authService *AuthService
	taskService *TaskService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Connect(&config.Config{DBDriver: config.DriverSQLite, DBPath: ":memory:", GinMode: "test"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		database.Close(db)
	})
	return db
}

func newTestTokens(t *testing.T, opts ...auth.TokenOption) *auth.TokenService {
	t.Helper()

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Issuer:        "test",
	}, opts...)
	require.NoError(t, err)
	return tokens
}

func setupTestEnv(t *testing.T, opts ...auth.TokenOption) testEnv {
	t.Helper()

	db := newTestDB(t)
	tokens := newTestTokens(t, opts...)

	return testEnv{
		db:          db,
		tokens:      tokens,
		authService: NewAuthService(repository.NewUserRepository(db), auth.NewPasswordHasherWithCost(bcrypt.MinCost), tokens),
		taskService: NewTaskService(repository.NewTaskRepository(db), nil),
	}
}
