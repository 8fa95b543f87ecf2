package repositoryimpl

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/kazz187/taskboard/internal/label"
	"github.com/kazz187/taskboard/internal/project"
	projectrepo "github.com/kazz187/taskboard/internal/project/repositoryimpl"
	"github.com/kazz187/taskboard/internal/workspace"
	"github.com/kazz187/taskboard/internal/workspaceuser"
	"github.com/kazz187/taskboard/pkg/cerr"
)

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, w *workspace.Workspace) error {
	if err := r.db.WithContext(ctx).Create(w).Error; err != nil {
		return cerr.WrapDBWriteError("workspace", err)
	}
	return nil
}

func (r *GormRepository) Get(ctx context.Context, id string) (*workspace.Workspace, error) {
	var w workspace.Workspace
	if err := r.db.WithContext(ctx).First(&w, "id = ?", id).Error; err != nil {
		return nil, cerr.WrapDBReadError("workspace", err)
	}
	return &w, nil
}

func (r *GormRepository) ListForUser(ctx context.Context, userID string) ([]*workspace.Workspace, error) {
	db := r.db.WithContext(ctx)
	memberOf := db.Model(&workspaceuser.WorkspaceUser{}).
		Select("workspace_id").
		Where("user_id = ? AND status = ?", userID, workspaceuser.StatusActive)

	var workspaces []*workspace.Workspace
	err := db.Where("(owner_id = ? OR id IN (?))", userID, memberOf).
		Order("created_at ASC, id ASC").
		Find(&workspaces).Error
	if err != nil {
		return nil, cerr.WrapDBReadError("workspaces", err)
	}
	return workspaces, nil
}

func (r *GormRepository) Update(ctx context.Context, w *workspace.Workspace) error {
	res := r.db.WithContext(ctx).Model(w).Select("name", "description", "updated_at").Updates(w)
	if res.Error != nil {
		return cerr.WrapDBWriteError("workspace", res.Error)
	}
	if res.RowsAffected == 0 {
		return cerr.NewError(cerr.NotFound, "workspace not found", fmt.Errorf("workspace %s", w.ID))
	}
	return nil
}

func (r *GormRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return DeleteCascade(tx, id)
	})
}

// DeleteCascade removes a workspace with its projects, labels and memberships using tx.
func DeleteCascade(tx *gorm.DB, workspaceID string) error {
	var projectIDs []string
	if err := tx.Model(&project.Project{}).Where("workspace_id = ?", workspaceID).Pluck("id", &projectIDs).Error; err != nil {
		return cerr.WrapDBReadError("projects", err)
	}
	for _, pid := range projectIDs {
		if err := projectrepo.DeleteCascade(tx, pid); err != nil {
			return err
		}
	}
	if err := tx.Where("workspace_id = ?", workspaceID).Delete(&label.Label{}).Error; err != nil {
		return cerr.WrapDBDeleteError("label", err)
	}
	if err := tx.Where("workspace_id = ?", workspaceID).Delete(&workspaceuser.WorkspaceUser{}).Error; err != nil {
		return cerr.WrapDBDeleteError("workspace user", err)
	}
	res := tx.Where("id = ?", workspaceID).Delete(&workspace.Workspace{})
	if res.Error != nil {
		return cerr.WrapDBDeleteError("workspace", res.Error)
	}
	if res.RowsAffected == 0 {
		return cerr.NewError(cerr.NotFound, "workspace not found", fmt.Errorf("workspace %s", workspaceID))
	}
	return nil
}
