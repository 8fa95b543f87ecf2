package repositoryimpl

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/kazz187/taskboard/internal/label"
	"github.com/kazz187/taskboard/pkg/cerr"
)

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, l *label.Label) error {
	if err := r.db.WithContext(ctx).Create(l).Error; err != nil {
		return cerr.WrapDBWriteError("label", err)
	}
	return nil
}

func (r *GormRepository) Get(ctx context.Context, id string) (*label.Label, error) {
	var l label.Label
	if err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, cerr.WrapDBReadError("label", err)
	}
	return &l, nil
}

func (r *GormRepository) ListByTask(ctx context.Context, taskID string) ([]*label.Label, error) {
	return r.list(ctx, "task_id = ?", taskID)
}

func (r *GormRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]*label.Label, error) {
	return r.list(ctx, "workspace_id = ?", workspaceID)
}

func (r *GormRepository) list(ctx context.Context, cond string, arg string) ([]*label.Label, error) {
	var labels []*label.Label
	if err := r.db.WithContext(ctx).Where(cond, arg).Order("created_at ASC, id ASC").Find(&labels).Error; err != nil {
		return nil, cerr.WrapDBReadError("labels", err)
	}
	return labels, nil
}

func (r *GormRepository) Update(ctx context.Context, l *label.Label) error {
	res := r.db.WithContext(ctx).Model(l).Select("name", "color").Updates(l)
	if res.Error != nil {
		return cerr.WrapDBWriteError("label", res.Error)
	}
	if res.RowsAffected == 0 {
		return cerr.NewError(cerr.NotFound, "label not found", fmt.Errorf("label %s", l.ID))
	}
	return nil
}

func (r *GormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&label.Label{})
	if res.Error != nil {
		return cerr.WrapDBDeleteError("label", res.Error)
	}
	if res.RowsAffected == 0 {
		return cerr.NewError(cerr.NotFound, "label not found", fmt.Errorf("label %s", id))
	}
	return nil
}
