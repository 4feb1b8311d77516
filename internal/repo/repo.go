package repo

import (
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/outbox"
)

// GormRepo implements every store port on top of one *gorm.DB, which is
// either the pool or an open transaction.
type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) Stores() service.Stores {
	return service.Stores{
		Catalog: r,
		Carts:   r,
		Orders:  r,
		Events:  r,
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&outbox.Event{},
	)
}
