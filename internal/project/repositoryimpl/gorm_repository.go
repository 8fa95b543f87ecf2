package repositoryimpl

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/kazz187/taskboard/internal/activity"
	"github.com/kazz187/taskboard/internal/label"
	"github.com/kazz187/taskboard/internal/project"
	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/pkg/cerr"
)

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, p *project.Project) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return cerr.WrapDBWriteError("project", err)
	}
	return nil
}

func (r *GormRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	var p project.Project
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, cerr.WrapDBReadError("project", err)
	}
	return &p, nil
}

func (r *GormRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]*project.Project, error) {
	var projects []*project.Project
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at ASC, id ASC").
		Find(&projects).Error
	if err != nil {
		return nil, cerr.WrapDBReadError("projects", err)
	}
	return projects, nil
}

func (r *GormRepository) Update(ctx context.Context, p *project.Project) error {
	res := r.db.WithContext(ctx).Model(p).
		Select("name", "slug", "icon", "description", "is_public", "updated_at").
		Updates(p)
	if res.Error != nil {
		return cerr.WrapDBWriteError("project", res.Error)
	}
	if res.RowsAffected == 0 {
		return cerr.NewError(cerr.NotFound, "project not found", fmt.Errorf("project %s", p.ID))
	}
	return nil
}

func (r *GormRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return DeleteCascade(tx, id)
	})
}

// DeleteCascade removes a project and everything hanging off its tasks using tx.
func DeleteCascade(tx *gorm.DB, projectID string) error {
	taskIDs := tx.Model(&task.Task{}).Select("id").Where("project_id = ?", projectID)
	if err := tx.Where("task_id IN (?)", taskIDs).Delete(&activity.Activity{}).Error; err != nil {
		return cerr.WrapDBDeleteError("activity", err)
	}
	if err := tx.Where("task_id IN (?)", taskIDs).Delete(&label.Label{}).Error; err != nil {
		return cerr.WrapDBDeleteError("label", err)
	}
	if err := tx.Where("project_id = ?", projectID).Delete(&task.Task{}).Error; err != nil {
		return cerr.WrapDBDeleteError("task", err)
	}
	res := tx.Where("id = ?", projectID).Delete(&project.Project{})
	if res.Error != nil {
		return cerr.WrapDBDeleteError("project", res.Error)
	}
	if res.RowsAffected == 0 {
		return cerr.NewError(cerr.NotFound, "project not found", fmt.Errorf("project %s", projectID))
	}
	return nil
}
