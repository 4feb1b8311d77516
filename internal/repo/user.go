package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
)

func (r *GormRepo) CreateUserIfNotExists(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).
			Where("username = ? OR email = ?", u.Username, u.Email).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: username or email already taken", service.ErrConflict)
		}
		if err := tx.Create(u).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: username or email already taken", service.ErrConflict)
			}
			return err
		}
		return nil
	})
}

// FindByLogin matches either the username or the e-mail address.
func (r *GormRepo) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).
		Where("username = ? OR email = ?", login, strings.ToLower(login)).
		First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, service.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *GormRepo) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", service.ErrUserNotFound, id)
		}
		return nil, err
	}
	return &u, nil
}
