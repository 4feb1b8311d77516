package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Cart struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"          json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Items     []CartItem `gorm:"constraint:OnDelete:CASCADE"   json:"items,omitempty"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"                              json:"id"`
	CartID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_product;not null"   json:"cart_id"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_product;not null"   json:"product_id"`
	Quantity  int64     `gorm:"not null;default:1;check:quantity > 0"             json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Cart    *Cart    `gorm:"foreignKey:CartID"    json:"-"`
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (CartItem) TableName() string {
	return "cart_items"
}

// Subtotal prices the line at the product's current price. It is zero when
// the product was not loaded or has since been removed from the catalog.
func (i CartItem) Subtotal() decimal.Decimal {
	if i.Product == nil {
		return decimal.Zero
	}
	return i.Product.Price.Mul(decimal.NewFromInt(i.Quantity))
}

type CartSummary struct {
	ItemCount     int             `json:"item_count"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

func Summarize(items []CartItem) CartSummary {
	s := CartSummary{ItemCount: len(items), TotalAmount: decimal.Zero}
	for _, it := range items {
		s.TotalQuantity += it.Quantity
		s.TotalAmount = s.TotalAmount.Add(it.Subtotal())
	}
	return s
}
