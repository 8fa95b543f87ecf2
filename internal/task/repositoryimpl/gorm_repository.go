package repositoryimpl

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kazz187/taskboard/internal/activity"
	"github.com/kazz187/taskboard/internal/label"
	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/pkg/cerr"
)

// numberingAttempts bounds retries when a concurrent insert took the same number.
const numberingAttempts = 3

var updatableColumns = []string{
	"title", "description", "status", "priority", "due_date", "user_id", "position", "updated_at",
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func withAssignee(db *gorm.DB) *gorm.DB {
	return db.Table("tasks").
		Select("tasks.*, users.name AS assignee_name, users.id AS assignee_id").
		Joins("LEFT JOIN users ON users.id = tasks.user_id")
}

func maxNumber(tx *gorm.DB, projectID string) (int, error) {
	var n int
	err := tx.Model(&task.Task{}).
		Select("COALESCE(MAX(number), 0)").
		Where("project_id = ?", projectID).
		Scan(&n).Error
	return n, err
}

func (r *GormRepository) Create(ctx context.Context, t *task.Task) error {
	return r.CreateBatch(ctx, t.ProjectID, []*task.Task{t})
}

func (r *GormRepository) CreateBatch(ctx context.Context, projectID string, tasks []*task.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	var err error
	for range numberingAttempts {
		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			base, err := maxNumber(tx, projectID)
			if err != nil {
				return err
			}
			for i, t := range tasks {
				t.ProjectID = projectID
				t.Number = base + i + 1
				t.Position = float64(t.Number)
			}
			return tx.Create(tasks).Error
		})
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
	}
	if err != nil {
		return cerr.WrapDBWriteError("task", err)
	}
	return nil
}

func (r *GormRepository) Get(ctx context.Context, id string) (*task.TaskWithAssignee, error) {
	var t task.TaskWithAssignee
	if err := withAssignee(r.db.WithContext(ctx)).Where("tasks.id = ?", id).Take(&t).Error; err != nil {
		return nil, cerr.WrapDBReadError("task", err)
	}
	return &t, nil
}

func (r *GormRepository) ListByProject(ctx context.Context, projectID string) ([]*task.TaskWithAssignee, error) {
	var tasks []*task.TaskWithAssignee
	err := withAssignee(r.db.WithContext(ctx)).
		Where("tasks.project_id = ?", projectID).
		Order("tasks.position ASC, tasks.created_at ASC, tasks.id ASC").
		Scan(&tasks).Error
	if err != nil {
		return nil, cerr.WrapDBReadError("tasks", err)
	}
	return tasks, nil
}

func (r *GormRepository) MaxNumber(ctx context.Context, projectID string) (int, error) {
	n, err := maxNumber(r.db.WithContext(ctx), projectID)
	if err != nil {
		return 0, cerr.WrapDBReadError("task", err)
	}
	return n, nil
}

func (r *GormRepository) MaxPosition(ctx context.Context, projectID string, status task.Status) (float64, error) {
	var pos float64
	err := r.db.WithContext(ctx).Model(&task.Task{}).
		Select("COALESCE(MAX(position), 0)").
		Where("project_id = ? AND status = ?", projectID, status).
		Scan(&pos).Error
	if err != nil {
		return 0, cerr.WrapDBReadError("task", err)
	}
	return pos, nil
}

func (r *GormRepository) Update(ctx context.Context, t *task.Task) error {
	res := r.db.WithContext(ctx).Model(t).Select(updatableColumns).Updates(t)
	if res.Error != nil {
		return cerr.WrapDBWriteError("task", res.Error)
	}
	if res.RowsAffected == 0 {
		return cerr.NewError(cerr.NotFound, "task not found", fmt.Errorf("task %s", t.ID))
	}
	return nil
}

func (r *GormRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&activity.Activity{}).Error; err != nil {
			return cerr.WrapDBDeleteError("activity", err)
		}
		if err := tx.Where("task_id = ?", id).Delete(&label.Label{}).Error; err != nil {
			return cerr.WrapDBDeleteError("label", err)
		}
		res := tx.Where("id = ?", id).Delete(&task.Task{})
		if res.Error != nil {
			return cerr.WrapDBDeleteError("task", res.Error)
		}
		if res.RowsAffected == 0 {
			return cerr.NewError(cerr.NotFound, "task not found", fmt.Errorf("task %s", id))
		}
		return nil
	})
}
