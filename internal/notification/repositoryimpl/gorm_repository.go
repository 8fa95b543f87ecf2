package repositoryimpl

import (
	"context"

	"gorm.io/gorm"

	"github.com/kazz187/taskboard/internal/notification"
	"github.com/kazz187/taskboard/pkg/cerr"
)

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, n *notification.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return cerr.WrapDBWriteError("notification", err)
	}
	return nil
}

func (r *GormRepository) ListByUser(ctx context.Context, userID string) ([]*notification.Notification, error) {
	var ns []*notification.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&ns).Error
	if err != nil {
		return nil, cerr.WrapDBReadError("notifications", err)
	}
	return ns, nil
}

func (r *GormRepository) MarkRead(ctx context.Context, userID, id string) (*notification.Notification, error) {
	var n notification.Notification
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&n, "id = ? AND user_id = ?", id, userID).Error; err != nil {
			return cerr.WrapDBReadError("notification", err)
		}
		if err := tx.Model(&n).Update("is_read", true).Error; err != nil {
			return cerr.WrapDBWriteError("notification", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	n.IsRead = true
	return &n, nil
}

func (r *GormRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&notification.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, cerr.WrapDBWriteError("notification", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *GormRepository) DeleteAll(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&notification.Notification{})
	if res.Error != nil {
		return 0, cerr.WrapDBDeleteError("notification", res.Error)
	}
	return res.RowsAffected, nil
}
