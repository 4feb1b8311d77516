package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/outbox"
)

const (
	TopicOrderEvents   = "order_events"
	TopicProductEvents = "product_events"

	EventOrderPlaced        = "order_placed"
	EventOrderCancelled     = "order_cancelled"
	EventOrderStatusChanged = "order_status_changed"
	EventProductCreated     = "product_created"
	EventProductUpdated     = "product_updated"
	EventProductDeleted     = "product_deleted"
	EventStockAdjusted      = "product_stock_adjusted"
)

type OrderEvent struct {
	OrderID     uuid.UUID          `json:"order_id"`
	UserID      uuid.UUID          `json:"user_id"`
	Status      models.OrderStatus `json:"status"`
	PrevStatus  models.OrderStatus `json:"prev_status,omitempty"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	Items       int                `json:"items"`
	At          time.Time          `json:"at"`
}

type ProductEvent struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Stock     int64           `json:"stock"`
	At        time.Time       `json:"at"`
}

func orderEvent(o *models.Order, prev models.OrderStatus) OrderEvent {
	return OrderEvent{
		OrderID:     o.ID,
		UserID:      o.UserID,
		Status:      o.Status,
		PrevStatus:  prev,
		TotalAmount: o.TotalAmount,
		Items:       len(o.Items),
		At:          time.Now().UTC(),
	}
}

func productEvent(p *models.Product) ProductEvent {
	return ProductEvent{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
		At:        time.Now().UTC(),
	}
}

func appendOrderEvent(ctx context.Context, events EventStore, eventType string, o *models.Order, prev models.OrderStatus) error {
	e, err := outbox.NewEvent(TopicOrderEvents, "order", o.ID.String(), eventType, orderEvent(o, prev))
	if err != nil {
		return err
	}
	return events.Append(ctx, e)
}

func appendProductEvent(ctx context.Context, events EventStore, eventType string, p *models.Product) error {
	e, err := outbox.NewEvent(TopicProductEvents, "product", p.ID.String(), eventType, productEvent(p))
	if err != nil {
		return err
	}
	return events.Append(ctx, e)
}
