package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

// SearchIndex is the full-text index kept next to the catalog. It only
// stores ids; rows are always read back from the database.
type SearchIndex interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, q, category string, offset, limit int) (int64, []uuid.UUID, error)
}

type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int64
	Category    string
	ImageURL    string
}

// ProductPatch changes only the non-nil fields.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Category    *string
	ImageURL    *string
}

type StockOperation string

const (
	StockIncrease StockOperation = "increase"
	StockDecrease StockOperation = "decrease"
)

type CatalogService struct {
	Tx      Transactor
	Catalog CatalogStore
	// Index is optional; without it search falls back to the database.
	Index SearchIndex
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.Catalog.GetProduct(ctx, id)
}

func (s *CatalogService) ListProducts(ctx context.Context, category string, offset, limit int) (int64, []models.Product, error) {
	return s.Catalog.ListProducts(ctx, ProductFilter{Category: strings.TrimSpace(category)}, offset, limit)
}

func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	return s.Catalog.Categories(ctx)
}

// Search asks the index for matching ids and loads the rows from the
// database. When the index is missing or fails it runs a LIKE query instead.
// Without q it lists the category, or every product still in stock when no
// category is given.
func (s *CatalogService) Search(ctx context.Context, q, category string, offset, limit int) (int64, []models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.search")

	q = strings.TrimSpace(q)
	category = strings.TrimSpace(category)
	switch {
	case q == "" && category != "":
		return s.Catalog.ListProducts(ctx, ProductFilter{Category: category}, offset, limit)
	case q == "":
		return s.Catalog.ListProducts(ctx, ProductFilter{InStock: true}, offset, limit)
	}

	if s.Index != nil {
		total, ids, err := s.Index.Search(ctx, q, category, offset, limit)
		if err == nil {
			items, err := s.Catalog.GetProductsByIDs(ctx, ids)
			if err != nil {
				return 0, nil, err
			}
			return total, items, nil
		}
		l.Warn("search_index_unavailable", "error", err)
	}

	return s.Catalog.ListProducts(ctx, ProductFilter{Category: category, Keyword: q}, offset, limit)
}

// maxPrice is the first value numeric(12,2) cannot hold.
var maxPrice = decimal.New(1, 10)

func validateProduct(name string, price decimal.Decimal) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name required", ErrValidation)
	}
	if !price.IsPositive() {
		return fmt.Errorf("%w: price must be > 0", ErrValidation)
	}
	if !price.Equal(price.Truncate(2)) {
		return fmt.Errorf("%w: price has more than 2 decimal places", ErrValidation)
	}
	if price.GreaterThanOrEqual(maxPrice) {
		return fmt.Errorf("%w: price must be below %s", ErrValidation, maxPrice)
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, actor Actor, in CreateProductInput) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create")

	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateProduct(in.Name, in.Price); err != nil {
		return nil, err
	}
	if in.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must be >= 0", ErrValidation)
	}

	p := &models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Category:    strings.TrimSpace(in.Category),
		ImageURL:    in.ImageURL,
	}
	err := s.Tx.WithinTx(ctx, func(ctx context.Context, st Stores) error {
		if err := st.Catalog.CreateProduct(ctx, p); err != nil {
			return err
		}
		return appendProductEvent(ctx, st.Events, EventProductCreated, p)
	})
	if err != nil {
		return nil, err
	}

	l.Info("product_created", "product_id", p.ID.String())
	s.reindex(ctx, p)
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, actor Actor, id uuid.UUID, patch ProductPatch) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update")

	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var p *models.Product
	err := s.Tx.WithinTx(ctx, func(ctx context.Context, st Stores) error {
		cur, err := st.Catalog.GetProduct(ctx, id)
		if err != nil {
			return err
		}
		if patch.Name != nil {
			cur.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Description != nil {
			cur.Description = *patch.Description
		}
		if patch.Price != nil {
			cur.Price = *patch.Price
		}
		if patch.Category != nil {
			cur.Category = strings.TrimSpace(*patch.Category)
		}
		if patch.ImageURL != nil {
			cur.ImageURL = *patch.ImageURL
		}
		if err := validateProduct(cur.Name, cur.Price); err != nil {
			return err
		}

		if err := st.Catalog.UpdateProduct(ctx, cur); err != nil {
			return err
		}
		p = cur
		return appendProductEvent(ctx, st.Events, EventProductUpdated, cur)
	})
	if err != nil {
		return nil, err
	}

	l.Info("product_updated", "product_id", id.String())
	s.reindex(ctx, p)
	return p, nil
}

// DeleteProduct soft-deletes the product and drops it from every cart.
// Existing orders keep their snapshot.
func (s *CatalogService) DeleteProduct(ctx context.Context, actor Actor, id uuid.UUID) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete")

	if err := requireAdmin(actor); err != nil {
		return err
	}

	err := s.Tx.WithinTx(ctx, func(ctx context.Context, st Stores) error {
		p, err := st.Catalog.GetProduct(ctx, id)
		if err != nil {
			return err
		}
		if err := st.Catalog.DeleteProduct(ctx, id); err != nil {
			return err
		}
		if err := st.Carts.RemoveProduct(ctx, id); err != nil {
			return err
		}
		return appendProductEvent(ctx, st.Events, EventProductDeleted, p)
	})
	if err != nil {
		return err
	}

	l.Info("product_deleted", "product_id", id.String())
	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			l.Warn("search_unindex_failed", "product_id", id.String(), "error", err)
		}
	}
	return nil
}

// AdjustStock moves stock through the same conditional updates the order
// flow uses, so a decrease never takes stock below zero.
func (s *CatalogService) AdjustStock(ctx context.Context, actor Actor, id uuid.UUID, qty int64, op StockOperation) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.adjust_stock")

	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if qty < 1 {
		return nil, fmt.Errorf("%w: quantity must be > 0", ErrValidation)
	}

	var p *models.Product
	err := s.Tx.WithinTx(ctx, func(ctx context.Context, st Stores) error {
		if _, err := st.Catalog.GetProduct(ctx, id); err != nil {
			return err
		}

		switch op {
		case StockIncrease:
			if err := st.Catalog.IncreaseStock(ctx, id, qty); err != nil {
				return err
			}
		case StockDecrease:
			if err := st.Catalog.DecreaseStock(ctx, id, qty); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: operation must be increase or decrease", ErrValidation)
		}

		cur, err := st.Catalog.GetProduct(ctx, id)
		if err != nil {
			return err
		}
		p = cur
		return appendProductEvent(ctx, st.Events, EventStockAdjusted, cur)
	})
	if err != nil {
		return nil, err
	}

	l.Info("stock_adjusted", "product_id", id.String(), "op", string(op), "qty", qty, "stock", p.Stock)
	s.reindex(ctx, p)
	return p, nil
}

func (s *CatalogService) reindex(ctx context.Context, p *models.Product) {
	if s.Index == nil || p == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "product_id", p.ID.String(), "error", err)
	}
}
