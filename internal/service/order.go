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

type OrderLine struct {
	ProductID uuid.UUID
	Quantity  int64
}

type PlaceOrderInput struct {
	ShippingAddress string
	Lines           []OrderLine
}

// OrderService coordinates every operation that moves stock and order state
// together. Each write runs in a single transaction obtained from Tx.
type OrderService struct {
	Tx     Transactor
	Orders OrderStore
}

func requireUser(a Actor) error {
	if a.UserID == uuid.Nil {
		return fmt.Errorf("%w: no authenticated user", ErrUnauthorized)
	}
	return nil
}

func requireAdmin(a Actor) error {
	if !a.IsAdmin() {
		return fmt.Errorf("%w: admin role required", ErrPermissionDenied)
	}
	return nil
}

func validateOrderInput(in PlaceOrderInput) (string, error) {
	if len(in.Lines) == 0 {
		return "", fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	}
	for i, line := range in.Lines {
		if line.ProductID == uuid.Nil {
			return "", fmt.Errorf("%w: item %d: product_id required", ErrValidation, i)
		}
		if line.Quantity < 1 {
			return "", fmt.Errorf("%w: item %d: quantity must be > 0", ErrValidation, i)
		}
	}
	return validateAddress(in.ShippingAddress)
}

func validateAddress(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", fmt.Errorf("%w: shipping address required", ErrValidation)
	}
	return addr, nil
}

// PlaceOrder reserves stock for every line and records the order. Either all
// lines are reserved and the order exists, or nothing changed.
func (s *OrderService) PlaceOrder(ctx context.Context, actor Actor, in PlaceOrderInput) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.place")

	if err := requireUser(actor); err != nil {
		return nil, err
	}
	addr, err := validateOrderInput(in)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	err = s.Tx.WithinTx(ctx, func(ctx context.Context, st Stores) error {
		o, err := placeOrder(ctx, st, actor.UserID, addr, in.Lines)
		if err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		l.Warn("place_order_failed", "user_id", actor.UserID.String(), "lines", len(in.Lines), "error", err)
		return nil, err
	}

	l.Info("order_placed", "order_id", order.ID.String(), "total", order.TotalAmount.StringFixed(2))
	return order, nil
}

// Checkout places an order from the caller's cart contents.
func (s *OrderService) Checkout(ctx context.Context, actor Actor, shippingAddress string) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.checkout")

	if err := requireUser(actor); err != nil {
		return nil, err
	}
	addr, err := validateAddress(shippingAddress)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	err = s.Tx.WithinTx(ctx, func(ctx context.Context, st Stores) error {
		items, err := st.Carts.Lines(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return fmt.Errorf("%w: cart is empty", ErrValidation)
		}

		lines := make([]OrderLine, 0, len(items))
		for _, it := range items {
			lines = append(lines, OrderLine{ProductID: it.ProductID, Quantity: it.Quantity})
		}

		o, err := placeOrder(ctx, st, actor.UserID, addr, lines)
		if err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		l.Warn("checkout_failed", "user_id", actor.UserID.String(), "error", err)
		return nil, err
	}

	l.Info("order_placed", "order_id", order.ID.String(), "total", order.TotalAmount.StringFixed(2))
	return order, nil
}

func placeOrder(ctx context.Context, st Stores, userID uuid.UUID, addr string, lines []OrderLine) (*models.Order, error) {
	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(lines))

	for _, line := range lines {
		p, err := st.Catalog.GetProduct(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if p.Stock < line.Quantity {
			return nil, fmt.Errorf("%w: %q requested %d, available %d",
				ErrInsufficientStock, p.Name, line.Quantity, p.Stock)
		}

		items = append(items, models.OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    line.Quantity,
			Price:       p.Price,
		})
		total = total.Add(p.Price.Mul(decimal.NewFromInt(line.Quantity)))

		if err := st.Catalog.DecreaseStock(ctx, p.ID, line.Quantity); err != nil {
			return nil, err
		}
	}

	order := &models.Order{
		UserID:          userID,
		Status:          models.OrderStatusPending,
		TotalAmount:     total,
		ShippingAddress: addr,
		Items:           items,
	}
	if err := st.Orders.CreateOrder(ctx, order); err != nil {
		return nil, err
	}
	if err := st.Carts.Clear(ctx, userID); err != nil {
		return nil, err
	}
	if err := appendOrderEvent(ctx, st.Events, EventOrderPlaced, order, ""); err != nil {
		return nil, err
	}
	return order, nil
}

// CancelOrder returns the order's stock to the catalog. Only the owner or an
// admin may cancel, and only while the order is PENDING or CONFIRMED.
func (s *OrderService) CancelOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.cancel")

	if err := requireUser(actor); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.Tx.WithinTx(ctx, func(ctx context.Context, st Stores) error {
		o, err := st.Orders.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if !actor.CanAccess(o.UserID) {
			return fmt.Errorf("%w: order %s belongs to another user", ErrPermissionDenied, orderID)
		}
		if !o.Status.Cancellable() {
			return fmt.Errorf("%w: cannot cancel order in status %s", ErrInvalidStatusTransition, o.Status)
		}

		if err := transition(ctx, st, o, models.OrderStatusCancelled); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		l.Warn("cancel_order_failed", "order_id", orderID.String(), "error", err)
		return nil, err
	}

	l.Info("order_cancelled", "order_id", orderID.String())
	return order, nil
}

// UpdateStatus lets an admin move an order to any status. CANCELLED is
// terminal and moving into it restores stock.
func (s *OrderService) UpdateStatus(ctx context.Context, actor Actor, orderID uuid.UUID, status string) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.update_status")

	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	to, err := models.ParseOrderStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var order *models.Order
	err = s.Tx.WithinTx(ctx, func(ctx context.Context, st Stores) error {
		o, err := st.Orders.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		order = o
		if o.Status == to {
			return nil
		}
		if o.Status == models.OrderStatusCancelled {
			return fmt.Errorf("%w: order %s is cancelled", ErrInvalidStatusTransition, orderID)
		}
		return transition(ctx, st, o, to)
	})
	if err != nil {
		l.Warn("update_status_failed", "order_id", orderID.String(), "status", status, "error", err)
		return nil, err
	}

	l.Info("order_status_updated", "order_id", orderID.String(), "status", string(order.Status))
	return order, nil
}

// transition applies the guarded status update on o and records the event.
// Moving into CANCELLED returns every line's quantity to stock.
func transition(ctx context.Context, st Stores, o *models.Order, to models.OrderStatus) error {
	from := o.Status
	if err := st.Orders.UpdateStatus(ctx, o.ID, from, to); err != nil {
		return err
	}
	o.Status = to

	eventType := EventOrderStatusChanged
	if to == models.OrderStatusCancelled {
		eventType = EventOrderCancelled
		for _, it := range o.Items {
			if err := st.Catalog.IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}
	}
	return appendOrderEvent(ctx, st.Events, eventType, o, from)
}

func (s *OrderService) GetOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	o, err := s.Orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(o.UserID) {
		return nil, fmt.Errorf("%w: order %s belongs to another user", ErrPermissionDenied, orderID)
	}
	return o, nil
}

func (s *OrderService) ListMyOrders(ctx context.Context, actor Actor, offset, limit int) (int64, []models.Order, error) {
	if err := requireUser(actor); err != nil {
		return 0, nil, err
	}
	return s.Orders.ListByUser(ctx, actor.UserID, offset, limit)
}

// ListAllOrders is admin only. An empty status lists every order.
func (s *OrderService) ListAllOrders(ctx context.Context, actor Actor, status string, offset, limit int) (int64, []models.Order, error) {
	if err := requireAdmin(actor); err != nil {
		return 0, nil, err
	}

	var filter models.OrderStatus
	if strings.TrimSpace(status) != "" {
		st, err := models.ParseOrderStatus(status)
		if err != nil {
			return 0, nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		filter = st
	}
	return s.Orders.ListAll(ctx, filter, offset, limit)
}

func (s *OrderService) Statistics(ctx context.Context, actor Actor) (models.OrderStats, error) {
	if err := requireAdmin(actor); err != nil {
		return models.OrderStats{}, err
	}
	return s.Orders.Stats(ctx)
}
