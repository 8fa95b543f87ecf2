package repositoryimpl

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kazz187/taskboard/internal/user"
	"github.com/kazz187/taskboard/pkg/cerr"
)

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, u *user.User, a *user.Account) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&user.User{}).Where("email = ?", u.Email).Count(&count).Error; err != nil {
			return cerr.WrapDBReadError("user", err)
		}
		if count > 0 {
			return cerr.NewError(cerr.AlreadyExists, "user already exists", nil)
		}
		if err := tx.Create(u).Error; err != nil {
			return cerr.WrapDBWriteError("user", err)
		}
		if a == nil {
			return nil
		}
		if err := tx.Create(a).Error; err != nil {
			return cerr.WrapDBWriteError("account", err)
		}
		return nil
	})
	return err
}

func (r *GormRepository) Get(ctx context.Context, id string) (*user.User, error) {
	var u user.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, cerr.WrapDBReadError("user", err)
	}
	return &u, nil
}

func (r *GormRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var u user.User
	if err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		return nil, cerr.WrapDBReadError("user", err)
	}
	return &u, nil
}

func (r *GormRepository) GetCredentialAccount(ctx context.Context, userID string) (*user.Account, error) {
	var a user.Account
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND provider_id = ?", userID, user.ProviderCredential).
		First(&a).Error
	if err != nil {
		return nil, cerr.WrapDBReadError("account", err)
	}
	return &a, nil
}

func (r *GormRepository) UpdatePassword(ctx context.Context, userID, hash string) error {
	res := r.db.WithContext(ctx).Model(&user.Account{}).
		Where("user_id = ? AND provider_id = ?", userID, user.ProviderCredential).
		Updates(map[string]any{"password": hash, "updated_at": time.Now()})
	if res.Error != nil {
		return cerr.WrapDBWriteError("account", res.Error)
	}
	if res.RowsAffected == 0 {
		return cerr.NewError(cerr.NotFound, "account not found", fmt.Errorf("no credential account for user %s", userID))
	}
	return nil
}

func (r *GormRepository) ListDemoCreatedBefore(ctx context.Context, before time.Time) ([]*user.User, error) {
	var users []*user.User
	err := r.db.WithContext(ctx).
		Where("is_demo = ? AND created_at < ?", true, before).
		Order("created_at").
		Find(&users).Error
	if err != nil {
		return nil, cerr.WrapDBReadError("users", err)
	}
	return users, nil
}
