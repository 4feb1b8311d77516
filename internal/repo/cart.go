package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
)

// GetOrCreateCart tolerates concurrent first access: the insert is a no-op
// when another request created the cart first.
func (r *GormRepo) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	db := r.DB.WithContext(ctx)

	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&models.Cart{UserID: userID}).Error; err != nil {
		return nil, err
	}

	var cart models.Cart
	if err := db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *GormRepo) userCartIDs(userID uuid.UUID) *gorm.DB {
	return r.DB.Model(&models.Cart{}).Select("id").Where("user_id = ?", userID)
}

func (r *GormRepo) Lines(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.DB.WithContext(ctx).
		Preload("Product").
		Where("cart_id IN (?)", r.userCartIDs(userID)).
		Order("created_at ASC").
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) FindLine(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, service.ErrCartItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) GetLine(ctx context.Context, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB.WithContext(ctx).
		Preload("Cart").
		Preload("Product").
		Where("id = ?", itemID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", service.ErrCartItemNotFound, itemID)
		}
		return nil, err
	}
	return &item, nil
}

// AddLine merges into the existing (cart, product) line when there is one.
func (r *GormRepo) AddLine(ctx context.Context, cartID, productID uuid.UUID, qty int64) (*models.CartItem, error) {
	db := r.DB.WithContext(ctx)

	res := db.Model(&models.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Update("quantity", gorm.Expr("quantity + ?", qty))
	if res.Error != nil {
		return nil, res.Error
	}

	var item models.CartItem
	if res.RowsAffected > 0 {
		if err := db.Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error; err != nil {
			return nil, err
		}
		return &item, nil
	}

	item = models.CartItem{CartID: cartID, ProductID: productID, Quantity: qty}
	if err := db.Create(&item).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: cart line was added concurrently", service.ErrConflict)
		}
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) UpdateQuantity(ctx context.Context, itemID uuid.UUID, qty int64) error {
	res := r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", qty)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", service.ErrCartItemNotFound, itemID)
	}
	return nil
}

func (r *GormRepo) RemoveLine(ctx context.Context, itemID uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", itemID).Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", service.ErrCartItemNotFound, itemID)
	}
	return nil
}

func (r *GormRepo) Clear(ctx context.Context, userID uuid.UUID) error {
	return r.DB.WithContext(ctx).
		Where("cart_id IN (?)", r.userCartIDs(userID)).
		Delete(&models.CartItem{}).Error
}

func (r *GormRepo) RemoveProduct(ctx context.Context, productID uuid.UUID) error {
	return r.DB.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.CartItem{}).Error
}
