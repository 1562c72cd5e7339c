package database

import (
	"fmt"
	"log/slog"

	"github.com/yukikurage/taskmanager-api/internal/models"
	"gorm.io/gorm"
)

type index struct {
	table   string
	model   any
	name    string
	columns string
}

// taskIndexes back the owner-scoped listing queries.
var taskIndexes = []index{
	{"tasks", &models.Task{}, "idx_tasks_user_created_at", "user_id, created_at"},
	{"tasks", &models.Task{}, "idx_tasks_user_status", "user_id, status"},
}

// AddIndexes adds performance-critical indexes that AutoMigrate does not derive
// from struct tags. Existing indexes are skipped.
func AddIndexes(db *gorm.DB) error {
	migrator := db.Migrator()

	for _, idx := range taskIndexes {
		if migrator.HasIndex(idx.model, idx.name) {
			slog.Debug("Index already exists, skipping", "index", idx.name)
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		slog.Info("Created index", "index", idx.name, "table", idx.table, "columns", idx.columns)
	}

	return nil
}
