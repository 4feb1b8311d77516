package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/pkg/outbox"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type testEnv struct {
	DB      *gorm.DB
	Repo    *repo.GormRepo
	Orders  *service.OrderService
	Carts   *service.CartService
	Catalog *service.CatalogService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	r := &repo.GormRepo{DB: db}
	tx := &repo.GormTransactor{DB: db}
	return &testEnv{
		DB:      db,
		Repo:    r,
		Orders:  &service.OrderService{Tx: tx, Orders: r},
		Carts:   &service.CartService{Tx: tx, Carts: r},
		Catalog: &service.CatalogService{Tx: tx, Catalog: r},
	}
}

func customer() service.Actor {
	return service.Actor{UserID: uuid.New(), Role: tokens.RoleUser}
}

func admin() service.Actor {
	return service.Actor{UserID: uuid.New(), Role: tokens.RoleAdmin}
}

func (e *testEnv) countOrders(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.DB.Model(&models.Order{}).Count(&n).Error)
	return n
}

func (e *testEnv) events(t *testing.T, eventType string) []outbox.Event {
	t.Helper()
	var out []outbox.Event
	require.NoError(t, e.DB.Where("type = ?", eventType).Order("id ASC").Find(&out).Error)
	return out
}

func (e *testEnv) fillCart(t *testing.T, a service.Actor, p *models.Product, qty int64) {
	t.Helper()
	_, err := e.Carts.AddToCart(context.Background(), a, p.ID, qty)
	require.NoError(t, err)
}
