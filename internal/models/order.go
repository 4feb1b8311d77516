package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range OrderStatuses {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// Cancellable reports whether an owner may still cancel the order.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPending || s == OrderStatusConfirmed
}

type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"            json:"id"`
	UserID          uuid.UUID       `gorm:"type:uuid;index;not null"        json:"user_id"`
	Status          OrderStatus     `gorm:"size:16;index;not null"          json:"status"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null"     json:"total_amount"`
	ShippingAddress string          `gorm:"size:500;not null"               json:"shipping_address"`
	CreatedAt       time.Time       `gorm:"index"                           json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Items           []OrderItem     `gorm:"constraint:OnDelete:CASCADE"     json:"items"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"                 json:"id"`
	OrderID     uuid.UUID       `gorm:"type:uuid;index;not null"             json:"order_id"`
	Position    int             `gorm:"not null;default:0"                   json:"-"`
	ProductID   uuid.UUID       `gorm:"type:uuid;index;not null"             json:"product_id"`
	ProductName string          `gorm:"size:200;not null"                    json:"product_name"`
	Quantity    int64           `gorm:"not null;check:quantity > 0"          json:"quantity"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"          json:"price"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(i.Quantity))
}

type OrderStats struct {
	TotalOrders int64                 `json:"total_orders"`
	ByStatus    map[OrderStatus]int64 `json:"by_status"`
}
