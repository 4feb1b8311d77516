package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type Options struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

var sampleProducts = []models.Product{
	{Name: "Mechanical keyboard", Description: "Tenkeyless, brown switches", Price: decimal.RequireFromString("89.90"), Stock: 25, Category: "electronics"},
	{Name: "Wireless mouse", Description: "2.4 GHz, silent clicks", Price: decimal.RequireFromString("24.50"), Stock: 60, Category: "electronics"},
	{Name: "USB-C hub", Description: "7 ports, 100 W passthrough", Price: decimal.RequireFromString("39.00"), Stock: 40, Category: "electronics"},
	{Name: "Cotton t-shirt", Description: "Organic cotton, unisex", Price: decimal.RequireFromString("15.00"), Stock: 120, Category: "clothing"},
	{Name: "Rain jacket", Description: "Packable and waterproof", Price: decimal.RequireFromString("64.99"), Stock: 18, Category: "clothing"},
	{Name: "The Go Programming Language", Description: "Donovan and Kernighan", Price: decimal.RequireFromString("34.95"), Stock: 30, Category: "books"},
	{Name: "Pour-over coffee set", Description: "Glass dripper with server", Price: decimal.RequireFromString("29.90"), Stock: 22, Category: "home"},
	{Name: "Desk plant", Description: "Low light snake plant", Price: decimal.RequireFromString("12.00"), Stock: 35, Category: "home"},
}

// Run creates the admin account and, on an empty catalog, a set of sample
// products. It is safe to run on every start.
func Run(ctx context.Context, db *gorm.DB, opts Options) error {
	l := logging.FromContext(ctx).With("component", "seed")
	r := &repo.GormRepo{DB: db}

	if opts.AdminPassword != "" {
		pwHash, err := hash.HashPassword(opts.AdminPassword)
		if err != nil {
			return fmt.Errorf("seed: hash admin password: %w", err)
		}
		admin := &models.User{
			Username:     opts.AdminUsername,
			Email:        opts.AdminEmail,
			PasswordHash: pwHash,
			Role:         tokens.RoleAdmin,
		}
		switch err := r.CreateUserIfNotExists(ctx, admin); {
		case err == nil:
			l.Info("seed_admin_created", "username", admin.Username)
		case errors.Is(err, service.ErrConflict):
			l.Info("seed_admin_exists", "username", admin.Username)
		default:
			return fmt.Errorf("seed: admin: %w", err)
		}
	}

	var n int64
	if err := db.WithContext(ctx).Model(&models.Product{}).Count(&n).Error; err != nil {
		return fmt.Errorf("seed: count products: %w", err)
	}
	if n > 0 {
		l.Info("seed_products_skipped", "existing", n)
		return nil
	}

	products := make([]models.Product, len(sampleProducts))
	copy(products, sampleProducts)
	if err := db.WithContext(ctx).Create(&products).Error; err != nil {
		return fmt.Errorf("seed: products: %w", err)
	}
	l.Info("seed_products_created", "count", len(products))
	return nil
}
