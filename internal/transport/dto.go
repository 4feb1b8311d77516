package transport

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type PageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

type PageResponse struct {
	Data any      `json:"data"`
	Meta PageMeta `json:"meta"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Login    string `json:"login"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	UserID       uuid.UUID `json:"user_id"`
	Role         string    `json:"role"`
}

type CreateProductRequest struct {
	Name        string          `json:"name"        validate:"required,max=200"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int64           `json:"stock"       validate:"gte=0"`
	Category    string          `json:"category"    validate:"max=100"`
	ImageURL    string          `json:"image_url"   validate:"omitempty,url,max=500"`
}

type PatchProductRequest struct {
	Name        *string          `json:"name"        validate:"omitempty,max=200"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category"    validate:"omitempty,max=100"`
	ImageURL    *string          `json:"image_url"   validate:"omitempty,url,max=500"`
}

type StockRequest struct {
	Quantity  int64  `json:"quantity"  validate:"required,gte=1"`
	Operation string `json:"operation" validate:"required,oneof=increase decrease"`
}

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int64     `json:"quantity"   validate:"required,gte=1"`
}

type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity" validate:"required,gte=1"`
}

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int64     `json:"quantity"   validate:"required,gte=1"`
}

type CreateOrderRequest struct {
	ShippingAddress string             `json:"shipping_address" validate:"required,max=500"`
	Items           []OrderItemRequest `json:"items"            validate:"required,min=1,dive"`
}

type CheckoutRequest struct {
	ShippingAddress string `json:"shipping_address" validate:"required,max=500"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
