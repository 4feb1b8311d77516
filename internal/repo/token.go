package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
)

func (r *GormRepo) SaveRefresh(ctx context.Context, t *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

func (r *GormRepo) RotateRefresh(ctx context.Context, oldJTI string, next *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.RefreshToken
		if err := tx.Where("jti = ?", oldJTI).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return service.ErrInvalidRefreshToken
			}
			return err
		}
		if current.Revoked || current.ExpiresAt.Before(time.Now().UTC()) {
			return service.ErrInvalidRefreshToken
		}

		// the revoked = false guard makes a replayed token lose the race
		res := tx.Model(&models.RefreshToken{}).
			Where("jti = ? AND revoked = ?", oldJTI, false).
			Update("revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return service.ErrInvalidRefreshToken
		}

		return tx.Create(next).Error
	})
}

func (r *GormRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", tokenHash).
		Update("revoked", true).Error
}
