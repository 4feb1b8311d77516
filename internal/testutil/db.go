package testutil

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

// NewDB opens a migrated in-memory SQLite database. It holds a single
// connection, so concurrent transactions queue up behind each other.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, repo.Migrate(db))
	return db
}

func SeedProduct(t *testing.T, db *gorm.DB, name, price string, stock int64) *models.Product {
	t.Helper()

	p := &models.Product{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		Category: "general",
	}
	require.NoError(t, db.WithContext(context.Background()).Create(p).Error)
	return p
}

func Stock(t *testing.T, db *gorm.DB, p *models.Product) int64 {
	t.Helper()

	var got models.Product
	require.NoError(t, db.Unscoped().Where("id = ?", p.ID).First(&got).Error)
	return got.Stock
}
