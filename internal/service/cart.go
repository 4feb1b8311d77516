package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CartView struct {
	Items   []models.CartItem  `json:"items"`
	Summary models.CartSummary `json:"summary"`
}

type CartService struct {
	Tx    Transactor
	Carts CartStore
}

func (s *CartService) GetCart(ctx context.Context, actor Actor) (*CartView, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	items, err := s.Carts.Lines(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.CartItem{}
	}
	return &CartView{Items: items, Summary: models.Summarize(items)}, nil
}

func (s *CartService) Summary(ctx context.Context, actor Actor) (models.CartSummary, error) {
	view, err := s.GetCart(ctx, actor)
	if err != nil {
		return models.CartSummary{}, err
	}
	return view.Summary, nil
}

// AddToCart merges with an existing line for the same product. The merged
// quantity must still be in stock.
func (s *CartService) AddToCart(ctx context.Context, actor Actor, productID uuid.UUID, qty int64) (*models.CartItem, error) {
	l := logging.FromContext(ctx).With("svc", "cart.add")

	if err := requireUser(actor); err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, fmt.Errorf("%w: product_id required", ErrValidation)
	}
	if qty < 1 {
		return nil, fmt.Errorf("%w: quantity must be > 0", ErrValidation)
	}

	var item *models.CartItem
	err := s.Tx.WithinTx(ctx, func(ctx context.Context, st Stores) error {
		cart, err := st.Carts.GetOrCreateCart(ctx, actor.UserID)
		if err != nil {
			return err
		}
		p, err := st.Catalog.GetProduct(ctx, productID)
		if err != nil {
			return err
		}

		var existing int64
		line, err := st.Carts.FindLine(ctx, cart.ID, productID)
		switch {
		case err == nil:
			existing = line.Quantity
		case errors.Is(err, ErrCartItemNotFound):
		default:
			return err
		}
		if p.Stock < existing+qty {
			return fmt.Errorf("%w: %q requested %d, available %d", ErrInsufficientStock, p.Name, existing+qty, p.Stock)
		}

		added, err := st.Carts.AddLine(ctx, cart.ID, productID, qty)
		if err != nil {
			return err
		}
		added.Product = p
		item = added
		return nil
	})
	if err != nil {
		l.Warn("add_to_cart_failed", "product_id", productID.String(), "error", err)
		return nil, err
	}

	l.Info("cart_item_added", "item_id", item.ID.String(), "quantity", item.Quantity)
	return item, nil
}

// ownedLine loads a cart line and checks it sits in the actor's cart.
func ownedLine(ctx context.Context, st Stores, actor Actor, itemID uuid.UUID) (*models.CartItem, error) {
	line, err := st.Carts.GetLine(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if line.Cart == nil || line.Cart.UserID != actor.UserID {
		return nil, fmt.Errorf("%w: cart item %s belongs to another user", ErrPermissionDenied, itemID)
	}
	return line, nil
}

func (s *CartService) UpdateItem(ctx context.Context, actor Actor, itemID uuid.UUID, qty int64) (*models.CartItem, error) {
	l := logging.FromContext(ctx).With("svc", "cart.update")

	if err := requireUser(actor); err != nil {
		return nil, err
	}
	if qty < 1 {
		return nil, fmt.Errorf("%w: quantity must be > 0", ErrValidation)
	}

	var item *models.CartItem
	err := s.Tx.WithinTx(ctx, func(ctx context.Context, st Stores) error {
		line, err := ownedLine(ctx, st, actor, itemID)
		if err != nil {
			return err
		}
		if line.Product == nil {
			return fmt.Errorf("%w: %s", ErrProductNotFound, line.ProductID)
		}
		if line.Product.Stock < qty {
			return fmt.Errorf("%w: %q requested %d, available %d", ErrInsufficientStock, line.Product.Name, qty, line.Product.Stock)
		}
		if err := st.Carts.UpdateQuantity(ctx, itemID, qty); err != nil {
			return err
		}
		line.Quantity = qty
		item = line
		return nil
	})
	if err != nil {
		l.Warn("update_cart_item_failed", "item_id", itemID.String(), "error", err)
		return nil, err
	}
	return item, nil
}

func (s *CartService) RemoveItem(ctx context.Context, actor Actor, itemID uuid.UUID) error {
	if err := requireUser(actor); err != nil {
		return err
	}
	return s.Tx.WithinTx(ctx, func(ctx context.Context, st Stores) error {
		if _, err := ownedLine(ctx, st, actor, itemID); err != nil {
			return err
		}
		return st.Carts.RemoveLine(ctx, itemID)
	})
}

func (s *CartService) ClearCart(ctx context.Context, actor Actor) error {
	if err := requireUser(actor); err != nil {
		return err
	}
	return s.Carts.Clear(ctx, actor.UserID)
}
