package database

import (
	"strings"

	"gorm.io/gorm"

	"github.com/yukikurage/taskmanager-api/internal/models"
)

// likeEscaper escapes LIKE wildcards with '!', which every supported dialect
// accepts as an explicit ESCAPE character.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// Paginate applies offset pagination to a GORM query. Page is 1-based.
func Paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}

// OwnedBy restricts a task query to tasks owned by userID.
func OwnedBy(userID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tasks.user_id = ?", userID)
	}
}

// WithStatus restricts a task query to an exact status.
func WithStatus(status models.TaskStatus) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tasks.status = ?", status)
	}
}

// TitleContains matches tasks whose title contains search, ignoring case.
// Wildcards in search are matched literally.
func TitleContains(search string) func(db *gorm.DB) *gorm.DB {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("LOWER(tasks.title) LIKE ? ESCAPE '!'", pattern)
	}
}
