package repositoryimpl

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/kazz187/taskboard/internal/activity"
	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/internal/notification"
	"github.com/kazz187/taskboard/internal/pushsubscription"
	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/internal/user"
	"github.com/kazz187/taskboard/internal/workspace"
	workspacerepo "github.com/kazz187/taskboard/internal/workspace/repositoryimpl"
	"github.com/kazz187/taskboard/internal/workspaceuser"
	"github.com/kazz187/taskboard/pkg/cerr"
)

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) PurgeUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owned []string
		if err := tx.Model(&workspace.Workspace{}).Where("owner_id = ?", userID).Pluck("id", &owned).Error; err != nil {
			return cerr.WrapDBReadError("workspaces", err)
		}
		for _, id := range owned {
			if err := workspacerepo.DeleteCascade(tx, id); err != nil {
				return err
			}
		}

		// Tasks in other users' projects stay, unassigned.
		if err := tx.Model(&task.Task{}).Where("user_id = ?", userID).Update("user_id", "").Error; err != nil {
			return cerr.WrapDBWriteError("task", err)
		}
		if err := tx.Model(&activity.Activity{}).Where("user_id = ?", userID).Update("user_id", nil).Error; err != nil {
			return cerr.WrapDBWriteError("activity", err)
		}

		for _, m := range []struct {
			target string
			model  any
		}{
			{"workspace user", &workspaceuser.WorkspaceUser{}},
			{"notification", &notification.Notification{}},
			{"push subscription", &pushsubscription.Subscription{}},
			{"session", &auth.Session{}},
			{"account", &user.Account{}},
		} {
			if err := tx.Where("user_id = ?", userID).Delete(m.model).Error; err != nil {
				return cerr.WrapDBDeleteError(m.target, err)
			}
		}

		res := tx.Where("id = ?", userID).Delete(&user.User{})
		if res.Error != nil {
			return cerr.WrapDBDeleteError("user", res.Error)
		}
		if res.RowsAffected == 0 {
			return cerr.NewError(cerr.NotFound, "user not found", fmt.Errorf("user %s", userID))
		}
		return nil
	})
}
