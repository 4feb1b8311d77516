package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/idempotency"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	CatalogHandler *CatalogHTTP
	CartHandler    *CartHTTP
	OrderHandler   *OrderHTTP
	HealthHandler  *HealthHTTP
	JWTSecret      []byte
	// Idempotency may be nil, which turns the Idempotency-Key check off.
	Idempotency idempotency.Checker
}

func Register(e *echo.Echo, d *Deps) {
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler

	if d.HealthHandler != nil {
		e.GET("/health/live", d.HealthHandler.Live)
		e.GET("/health/ready", d.HealthHandler.Ready)
		e.GET("/health/version", d.HealthHandler.VersionInfo)
	}

	authMW := middleware.New(d.JWTSecret)
	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.POST("/logout", d.AuthHandler.Logout)

	products := api.Group("/products")
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/search", d.CatalogHandler.Search)
	products.GET("/categories", d.CatalogHandler.Categories)
	products.GET("/:id", d.CatalogHandler.GetProduct)

	adminProducts := products.Group("", authMW.RequireAdmin)
	adminProducts.POST("", d.CatalogHandler.CreateProduct)
	adminProducts.PATCH("/:id", d.CatalogHandler.PatchProduct)
	adminProducts.DELETE("/:id", d.CatalogHandler.DeleteProduct)
	adminProducts.PATCH("/:id/stock", d.CatalogHandler.AdjustStock)

	cart := api.Group("/cart", authMW.RequireAuth)
	cart.GET("", d.CartHandler.GetCart)
	cart.GET("/summary", d.CartHandler.Summary)
	cart.POST("/items", d.CartHandler.AddItem)
	cart.PUT("/items/:itemId", d.CartHandler.UpdateItem)
	cart.DELETE("/items/:itemId", d.CartHandler.RemoveItem)
	cart.DELETE("", d.CartHandler.Clear)

	idem := idempotency.Middleware(d.Idempotency, userScope)

	orders := api.Group("/orders", authMW.RequireAuth)
	orders.POST("", d.OrderHandler.CreateOrder, idem)
	orders.POST("/checkout", d.OrderHandler.Checkout, idem)
	orders.GET("/my", d.OrderHandler.MyOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.PUT("/:id/cancel", d.OrderHandler.CancelOrder)

	adminOrders := orders.Group("/admin", authMW.RequireAdmin)
	adminOrders.GET("/all", d.OrderHandler.AllOrders)
	adminOrders.PUT("/:id/status", d.OrderHandler.UpdateStatus)
	adminOrders.GET("/statistics", d.OrderHandler.Statistics)
}
