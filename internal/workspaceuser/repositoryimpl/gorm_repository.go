package repositoryimpl

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kazz187/taskboard/internal/workspaceuser"
	"github.com/kazz187/taskboard/pkg/cerr"
)

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, wu *workspaceuser.WorkspaceUser) error {
	if err := r.db.WithContext(ctx).Create(wu).Error; err != nil {
		return cerr.WrapDBWriteError("workspace user", err)
	}
	return nil
}

func (r *GormRepository) Get(ctx context.Context, id string) (*workspaceuser.WorkspaceUser, error) {
	var wu workspaceuser.WorkspaceUser
	if err := r.db.WithContext(ctx).First(&wu, "id = ?", id).Error; err != nil {
		return nil, cerr.WrapDBReadError("workspace user", err)
	}
	return &wu, nil
}

func (r *GormRepository) FindForUser(ctx context.Context, workspaceID, userID, email string) (*workspaceuser.WorkspaceUser, error) {
	q := r.db.WithContext(ctx).Where("workspace_id = ?", workspaceID)
	switch {
	case userID != "" && email != "":
		q = q.Where("(user_id = ? OR user_email = ?)", userID, email)
	case userID != "":
		q = q.Where("user_id = ?", userID)
	case email != "":
		q = q.Where("user_email = ?", email)
	default:
		return nil, cerr.NewError(cerr.InvalidArgument, "user id or email is required", nil)
	}
	var wu workspaceuser.WorkspaceUser
	if err := q.Order("created_at ASC").First(&wu).Error; err != nil {
		return nil, cerr.WrapDBReadError("workspace user", err)
	}
	return &wu, nil
}

func (r *GormRepository) list(ctx context.Context, workspaceID string, status workspaceuser.Status) ([]*workspaceuser.Member, error) {
	q := r.db.WithContext(ctx).Table("workspace_users").
		Select("workspace_users.*, COALESCE(users.name, '') AS user_name").
		Joins("LEFT JOIN users ON users.id = workspace_users.user_id").
		Where("workspace_users.workspace_id = ?", workspaceID)
	if status != "" {
		q = q.Where("workspace_users.status = ?", status)
	}
	var members []*workspaceuser.Member
	if err := q.Order("workspace_users.created_at ASC, workspace_users.id ASC").Scan(&members).Error; err != nil {
		return nil, cerr.WrapDBReadError("workspace users", err)
	}
	return members, nil
}

func (r *GormRepository) List(ctx context.Context, workspaceID string) ([]*workspaceuser.Member, error) {
	return r.list(ctx, workspaceID, "")
}

func (r *GormRepository) ListActive(ctx context.Context, workspaceID string) ([]*workspaceuser.Member, error) {
	return r.list(ctx, workspaceID, workspaceuser.StatusActive)
}

func (r *GormRepository) Delete(ctx context.Context, workspaceID, userIDOrEmail string) (*workspaceuser.WorkspaceUser, error) {
	var deleted workspaceuser.WorkspaceUser
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("workspace_id = ? AND (user_id = ? OR user_email = ?)", workspaceID, userIDOrEmail, userIDOrEmail).
			First(&deleted).Error
		if err != nil {
			return cerr.WrapDBReadError("workspace user", err)
		}
		if err := tx.Delete(&deleted).Error; err != nil {
			return cerr.WrapDBDeleteError("workspace user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

func (r *GormRepository) UpdateStatusByUser(ctx context.Context, userID string, status workspaceuser.Status) ([]*workspaceuser.WorkspaceUser, error) {
	var updated []*workspaceuser.WorkspaceUser
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Find(&updated).Error; err != nil {
			return cerr.WrapDBReadError("workspace user", err)
		}
		if len(updated) == 0 {
			return cerr.NewError(cerr.NotFound, "workspace user not found", fmt.Errorf("user %s", userID))
		}
		values := map[string]any{"status": status, "updated_at": time.Now()}
		if err := tx.Model(&workspaceuser.WorkspaceUser{}).Where("user_id = ?", userID).Updates(values).Error; err != nil {
			return cerr.WrapDBWriteError("workspace user", err)
		}
		for _, wu := range updated {
			wu.Status = status
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *GormRepository) ActivatePending(ctx context.Context, userID, email string) ([]*workspaceuser.WorkspaceUser, error) {
	var activated []*workspaceuser.WorkspaceUser
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		match := tx.Where("status = ?", workspaceuser.StatusPending)
		if email != "" {
			match = match.Where("(user_id = ? OR user_email = ?)", userID, email)
		} else {
			match = match.Where("user_id = ?", userID)
		}
		if err := match.Find(&activated).Error; err != nil {
			return cerr.WrapDBReadError("workspace user", err)
		}
		if len(activated) == 0 {
			return nil
		}
		ids := make([]string, len(activated))
		for i, wu := range activated {
			ids[i] = wu.ID
		}
		now := time.Now()
		values := map[string]any{
			"user_id":    userID,
			"status":     workspaceuser.StatusActive,
			"joined_at":  now,
			"updated_at": now,
		}
		if err := tx.Model(&workspaceuser.WorkspaceUser{}).Where("id IN ?", ids).Updates(values).Error; err != nil {
			return cerr.WrapDBWriteError("workspace user", err)
		}
		for _, wu := range activated {
			wu.UserID = userID
			wu.Status = workspaceuser.StatusActive
			wu.JoinedAt = &now
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return activated, nil
}
