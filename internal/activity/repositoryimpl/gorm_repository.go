package repositoryimpl

import (
	"context"

	"gorm.io/gorm"

	"github.com/kazz187/taskboard/internal/activity"
	"github.com/kazz187/taskboard/pkg/cerr"
)

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, a *activity.Activity) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return cerr.WrapDBWriteError("activity", err)
	}
	return nil
}

func (r *GormRepository) ListByTask(ctx context.Context, taskID string) ([]*activity.Entry, error) {
	var entries []*activity.Entry
	err := r.db.WithContext(ctx).Table("activities").
		Select("activities.*, users.name AS user_name").
		Joins("LEFT JOIN users ON users.id = activities.user_id").
		Where("activities.task_id = ?", taskID).
		Order("activities.created_at DESC, activities.id DESC").
		Scan(&entries).Error
	if err != nil {
		return nil, cerr.WrapDBReadError("activities", err)
	}
	return entries, nil
}
