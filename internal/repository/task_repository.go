package repository

import (
	"context"

	"github.com/yukikurage/taskmanager-api/internal/database"
	"github.com/yukikurage/taskmanager-api/internal/models"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// FindOwned finds a task by ID and owner. A task owned by someone else
// returns gorm.ErrRecordNotFound exactly like a missing one.
func (r *GormTaskRepository) FindOwned(ctx context.Context, userID, taskID string) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).
		Scopes(database.OwnedBy(userID)).
		Where("tasks.id = ?", taskID).
		First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks with filtering and pagination. The count and the page
// are fetched concurrently.
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	if filter.UserID == "" {
		return []models.Task{}, 0, nil
	}

	filters := func(db *gorm.DB) *gorm.DB {
		db = database.OwnedBy(filter.UserID)(db)
		if filter.Status != nil {
			db = database.WithStatus(*filter.Status)(db)
		}
		if filter.Search != "" {
			db = database.TitleContains(filter.Search)(db)
		}
		return db
	}

	var (
		tasks []models.Task
		total int64
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.db.WithContext(gctx).
			Model(&models.Task{}).
			Scopes(filters).
			Count(&total).Error
	})

	g.Go(func() error {
		query := r.db.WithContext(gctx).
			Model(&models.Task{}).
			Scopes(filters).
			Order("tasks.created_at DESC").
			Order("tasks.id DESC")
		if filter.Page > 0 && filter.PageSize > 0 {
			query = query.Scopes(database.Paginate(filter.Page, filter.PageSize))
		}
		return query.Find(&tasks).Error
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, total, nil
}

// Update saves all fields of a task
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// Delete soft deletes a task. Deleting a task that is absent or owned by
// another user returns gorm.ErrRecordNotFound.
func (r *GormTaskRepository) Delete(ctx context.Context, userID, taskID string) error {
	result := r.db.WithContext(ctx).
		Scopes(database.OwnedBy(userID)).
		Where("tasks.id = ?", taskID).
		Delete(&models.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
