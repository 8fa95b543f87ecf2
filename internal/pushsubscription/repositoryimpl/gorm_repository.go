package repositoryimpl

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kazz187/taskboard/internal/pushsubscription"
	"github.com/kazz187/taskboard/pkg/cerr"
)

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Upsert(ctx context.Context, s *pushsubscription.Subscription) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh_key", "auth_key"}),
	}).Create(s).Error
	if err != nil {
		return cerr.WrapDBWriteError("push subscription", err)
	}
	return nil
}

func (r *GormRepository) ListByUser(ctx context.Context, userID string) ([]*pushsubscription.Subscription, error) {
	var subs []*pushsubscription.Subscription
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&subs).Error; err != nil {
		return nil, cerr.WrapDBReadError("push subscriptions", err)
	}
	return subs, nil
}

func (r *GormRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&pushsubscription.Subscription{}).Error; err != nil {
		return cerr.WrapDBDeleteError("push subscription", err)
	}
	return nil
}

func (r *GormRepository) DeleteByEndpoint(ctx context.Context, userID, endpoint string) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND endpoint = ?", userID, endpoint).Delete(&pushsubscription.Subscription{})
	if res.Error != nil {
		return cerr.WrapDBDeleteError("push subscription", res.Error)
	}
	if res.RowsAffected == 0 {
		return cerr.NewError(cerr.NotFound, "push subscription not found", fmt.Errorf("endpoint %s", endpoint))
	}
	return nil
}
