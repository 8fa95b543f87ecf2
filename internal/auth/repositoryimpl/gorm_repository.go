package repositoryimpl

import (
	"context"

	"gorm.io/gorm"

	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/pkg/cerr"
)

type GormSessionRepository struct {
	db *gorm.DB
}

func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

func (r *GormSessionRepository) Create(ctx context.Context, s *auth.Session) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return cerr.WrapDBWriteError("session", err)
	}
	return nil
}

func (r *GormSessionRepository) Get(ctx context.Context, id string) (*auth.Session, error) {
	var s auth.Session
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, cerr.WrapDBReadError("session", err)
	}
	return &s, nil
}

func (r *GormSessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&auth.Session{}, "id = ?", id).Error; err != nil {
		return cerr.WrapDBDeleteError("session", err)
	}
	return nil
}
