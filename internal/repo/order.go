package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
)

func itemsInPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *GormRepo) CreateOrder(ctx context.Context, o *models.Order) error {
	for i := range o.Items {
		o.Items[i].Position = i
	}
	return r.DB.WithContext(ctx).Create(o).Error
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).
		Preload("Items", itemsInPosition).
		Where("id = ?", id).
		First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", service.ErrOrderNotFound, id)
		}
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) (int64, []models.Order, error) {
	byUser := func(db *gorm.DB) *gorm.DB { return db.Where("user_id = ?", userID) }
	return r.listOrders(ctx, byUser, offset, limit)
}

func (r *GormRepo) ListAll(ctx context.Context, status models.OrderStatus, offset, limit int) (int64, []models.Order, error) {
	byStatus := func(db *gorm.DB) *gorm.DB {
		if status != "" {
			return db.Where("status = ?", status)
		}
		return db
	}
	return r.listOrders(ctx, byStatus, offset, limit)
}

func (r *GormRepo) listOrders(ctx context.Context, scope func(*gorm.DB) *gorm.DB, offset, limit int) (int64, []models.Order, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Order{}).Scopes(scope).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	orders := make([]models.Order, 0, limit)
	if err := r.DB.WithContext(ctx).
		Scopes(scope).
		Preload("Items", itemsInPosition).
		Order("created_at DESC").
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

func (r *GormRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) error {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", service.ErrOrderNotFound, id)
	}
	return fmt.Errorf("%w: order %s is no longer %s", service.ErrInvalidStatusTransition, id, from)
}

func (r *GormRepo) Stats(ctx context.Context) (models.OrderStats, error) {
	var rows []struct {
		Status models.OrderStatus
		N      int64
	}
	if err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error; err != nil {
		return models.OrderStats{}, err
	}

	stats := models.OrderStats{ByStatus: make(map[models.OrderStatus]int64, len(models.OrderStatuses))}
	for _, st := range models.OrderStatuses {
		stats.ByStatus[st] = 0
	}
	for _, row := range rows {
		stats.ByStatus[row.Status] = row.N
		stats.TotalOrders += row.N
	}
	return stats, nil
}
