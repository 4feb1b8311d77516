package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/outbox"
)

type ProductFilter struct {
	Category string
	Keyword  string
	// InStock keeps only products with stock > 0.
	InStock  bool
}

type CatalogStore interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	ListProducts(ctx context.Context, f ProductFilter, offset, limit int) (int64, []models.Product, error)
	Categories(ctx context.Context) ([]string, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	// DecreaseStock is a single conditional update; it never overdraws.
	DecreaseStock(ctx context.Context, id uuid.UUID, qty int64) error
	IncreaseStock(ctx context.Context, id uuid.UUID, qty int64) error
}

type CartStore interface {
	GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	Lines(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	FindLine(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error)
	GetLine(ctx context.Context, itemID uuid.UUID) (*models.CartItem, error)
	AddLine(ctx context.Context, cartID, productID uuid.UUID, qty int64) (*models.CartItem, error)
	UpdateQuantity(ctx context.Context, itemID uuid.UUID, qty int64) error
	RemoveLine(ctx context.Context, itemID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
	RemoveProduct(ctx context.Context, productID uuid.UUID) error
}

type OrderStore interface {
	CreateOrder(ctx context.Context, o *models.Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) (int64, []models.Order, error)
	ListAll(ctx context.Context, status models.OrderStatus, offset, limit int) (int64, []models.Order, error)
	// UpdateStatus moves the order from one status to another only if it is
	// still in from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) error
	Stats(ctx context.Context) (models.OrderStats, error)
}

type EventStore interface {
	Append(ctx context.Context, e *outbox.Event) error
}

// Stores is one consistent view of every store, bound to a single
// transaction when handed out by a Transactor.
type Stores struct {
	Catalog CatalogStore
	Carts   CartStore
	Orders  OrderStore
	Events  EventStore
}

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}

type UserStore interface {
	CreateUserIfNotExists(ctx context.Context, u *models.User) error
	FindByLogin(ctx context.Context, login string) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type TokenStore interface {
	SaveRefresh(ctx context.Context, t *models.RefreshToken) error
	// RotateRefresh revokes oldJTI and stores next atomically. It fails with
	// ErrInvalidRefreshToken when oldJTI is unknown, revoked or expired.
	RotateRefresh(ctx context.Context, oldJTI string, next *models.RefreshToken) error
	RevokeByHash(ctx context.Context, tokenHash string) error
}
