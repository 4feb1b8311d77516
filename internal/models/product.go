package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"                     json:"id"`
	Name        string          `gorm:"size:200;not null;index"                  json:"name"`
	Description string          `gorm:"type:text"                                json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"              json:"price"`
	Stock       int64           `gorm:"not null;default:0;check:stock >= 0"      json:"stock"`
	Category    string          `gorm:"size:100;index"                           json:"category"`
	ImageURL    string          `gorm:"size:500"                                 json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index"                                    json:"-"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
