package service_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/testutil"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
)

func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("STOREFRONT_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("STOREFRONT_TEST_DATABASE_URL is required for tests")
	}

	db, err := pkgdb.Open(context.Background(), dsn, pkgdb.Pool{MaxOpen: 16})
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(db))

	truncate := func() {
		db.Exec("TRUNCATE TABLE order_items, orders, cart_items, carts, products, outbox_events RESTART IDENTITY CASCADE")
	}
	truncate()
	t.Cleanup(func() {
		truncate()
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Runs against real Postgres connections so buyers overlap inside the
// database, not behind a single pooled connection.
func TestPlaceOrder_LastUnitRace_Postgres(t *testing.T) {
	db := newPostgresDB(t)

	tests := []struct {
		name      string
		isolation sql.IsolationLevel
	}{
		{name: "serializable", isolation: sql.LevelSerializable},
		{name: "read committed", isolation: sql.LevelReadCommitted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iso := tt.isolation
			r := &repo.GormRepo{DB: db}
			orders := &service.OrderService{
				Tx:     &repo.GormTransactor{DB: db, Isolation: &iso, MaxRetries: 10},
				Orders: r,
			}
			p := testutil.SeedProduct(t, db, "Limited print "+tt.name, "80.00", 1)

			const buyers = 8
			var mu sync.Mutex
			var ok, short int
			start := make(chan struct{})
			g, ctx := errgroup.WithContext(context.Background())
			for i := 0; i < buyers; i++ {
				g.Go(func() error {
					<-start
					_, err := orders.PlaceOrder(ctx, customer(), service.PlaceOrderInput{
						ShippingAddress: "1 Main St",
						Lines:           []service.OrderLine{{ProductID: p.ID, Quantity: 1}},
					})
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						ok++
					case errors.Is(err, service.ErrInsufficientStock):
						short++
					default:
						return err
					}
					return nil
				})
			}
			close(start)
			require.NoError(t, g.Wait())

			assert.Equal(t, 1, ok)
			assert.Equal(t, buyers-1, short)
			assert.Zero(t, testutil.Stock(t, db, p))

			var n int64
			require.NoError(t, db.Table("order_items").Where("product_id = ?", p.ID).Count(&n).Error)
			assert.EqualValues(t, 1, n)
		})
	}
}
