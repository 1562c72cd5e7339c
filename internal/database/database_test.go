package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskmanager-api/internal/config"
	"github.com/yukikurage/taskmanager-api/internal/models"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Connect(&config.Config{DBDriver: config.DriverSQLite, DBPath: ":memory:", GinMode: "test"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	t.Cleanup(func() {
		Close(db)
	})
	return db
}

func TestDialector(t *testing.T) {
	for _, driver := range []string{config.DriverPostgres, config.DriverMySQL, config.DriverSQLite} {
		d, err := Dialector(&config.Config{DBDriver: driver})
		require.NoError(t, err, driver)
		assert.Equal(t, driver, d.Name())
	}

	_, err := Dialector(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestMigrate_CreatesIndexesOnce(t *testing.T) {
	db := newTestDB(t)

	for _, idx := range taskIndexes {
		assert.True(t, db.Migrator().HasIndex(idx.model, idx.name), idx.name)
	}

	// A second run must skip existing indexes instead of failing.
	require.NoError(t, Migrate(db))
}

func TestMigrate_EmailIsUnique(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.Create(&models.User{Name: "A", Email: "a@x.com", PasswordHash: "h"}).Error)
	err := db.Create(&models.User{Name: "B", Email: "a@x.com", PasswordHash: "h"}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// Emails are case-sensitive as stored.
	assert.NoError(t, db.Create(&models.User{Name: "C", Email: "A@x.com", PasswordHash: "h"}).Error)
}

func TestScopes(t *testing.T) {
	db := newTestDB(t)

	alice := &models.User{Name: "Alice", Email: "alice@x.com", PasswordHash: "h"}
	bob := &models.User{Name: "Bob", Email: "bob@x.com", PasswordHash: "h"}
	require.NoError(t, db.Create(alice).Error)
	require.NoError(t, db.Create(bob).Error)

	tasks := []models.Task{
		{Title: "Buy milk", UserID: alice.ID},
		{Title: "buy BREAD", UserID: alice.ID, Status: models.TaskStatusCompleted},
		{Title: "100% done", UserID: alice.ID},
		{Title: "1000 done", UserID: alice.ID},
		{Title: "snake_case", UserID: alice.ID},
		{Title: "snakeXcase", UserID: alice.ID},
		{Title: "Buy milk", UserID: bob.ID},
	}
	require.NoError(t, db.Create(&tasks).Error)

	count := func(scopes ...func(*gorm.DB) *gorm.DB) int64 {
		var n int64
		require.NoError(t, db.Model(&models.Task{}).Scopes(scopes...).Count(&n).Error)
		return n
	}

	assert.Equal(t, int64(6), count(OwnedBy(alice.ID)))
	assert.Equal(t, int64(2), count(OwnedBy(alice.ID), TitleContains("BUY")))
	assert.Equal(t, int64(1), count(OwnedBy(alice.ID), WithStatus(models.TaskStatusCompleted)))
	assert.Equal(t, int64(1), count(OwnedBy(alice.ID), TitleContains("0%")))
	assert.Equal(t, int64(1), count(OwnedBy(alice.ID), TitleContains("e_c")))
	assert.Equal(t, int64(0), count(OwnedBy(bob.ID), TitleContains("bread")))

	var page []models.Task
	require.NoError(t, db.Scopes(OwnedBy(alice.ID), Paginate(2, 4)).Order("title").Find(&page).Error)
	assert.Len(t, page, 2)
}

func TestTitleContains_FoldsNonASCII(t *testing.T) {
	db := newTestDB(t)

	user := &models.User{Name: "Zoë", Email: "zoe@x.com", PasswordHash: "h"}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(&[]models.Task{
		{Title: "Élan vital", UserID: user.ID},
		{Title: "ÜBER refactor", UserID: user.ID},
		{Title: "plain", UserID: user.ID},
	}).Error)

	tests := []struct {
		search string
		want   int64
	}{
		{"élan", 1},
		{"ÉLAN", 1},
		{"über", 1},
		{"VITAL", 1},
		{"ö", 0},
	}

	for _, tt := range tests {
		var n int64
		require.NoError(t, db.Model(&models.Task{}).Scopes(OwnedBy(user.ID), TitleContains(tt.search)).Count(&n).Error)
		assert.Equal(t, tt.want, n, tt.search)
	}
}
