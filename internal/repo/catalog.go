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

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", service.ErrProductNotFound, id)
		}
		return nil, err
	}
	return &p, nil
}

// GetProductsByIDs keeps the order of ids and skips ids that no longer exist.
func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *GormRepo) ListProducts(ctx context.Context, f service.ProductFilter, offset, limit int) (int64, []models.Product, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Scopes(productFilter(f)).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := r.DB.WithContext(ctx).
		Scopes(productFilter(f)).
		Order("created_at DESC").
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func productFilter(f service.ProductFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Category != "" {
			db = db.Where("category = ?", f.Category)
		}
		if kw := strings.ToLower(strings.TrimSpace(f.Keyword)); kw != "" {
			like := "%" + kw + "%"
			db = db.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
		}
		if f.InStock {
			db = db.Where("stock > 0")
		}
		return db
	}
}

func (r *GormRepo) Categories(ctx context.Context) ([]string, error) {
	var out []string
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("category <> ''").
		Distinct("category").
		Order("category ASC").
		Pluck("category", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

// UpdateProduct writes descriptive fields and price. Stock is left alone;
// it only moves through DecreaseStock and IncreaseStock.
func (r *GormRepo) UpdateProduct(ctx context.Context, p *models.Product) error {
	res := r.DB.WithContext(ctx).Model(p).
		Select("name", "description", "price", "category", "image_url").
		Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", service.ErrProductNotFound, p.ID)
	}
	return nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", service.ErrProductNotFound, id)
	}
	return nil
}

func (r *GormRepo) DecreaseStock(ctx context.Context, id uuid.UUID, qty int64) error {
	if qty < 1 {
		return fmt.Errorf("%w: quantity must be > 0", service.ErrValidation)
	}

	res := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", service.ErrProductNotFound, id)
	}
	return fmt.Errorf("%w: product %s", service.ErrInsufficientStock, id)
}

// IncreaseStock also reaches soft-deleted products so cancelled orders can
// always return their stock.
func (r *GormRepo) IncreaseStock(ctx context.Context, id uuid.UUID, qty int64) error {
	if qty < 1 {
		return fmt.Errorf("%w: quantity must be > 0", service.ErrValidation)
	}

	res := r.DB.WithContext(ctx).Unscoped().Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", service.ErrProductNotFound, id)
	}
	return nil
}
