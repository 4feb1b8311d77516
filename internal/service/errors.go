package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation              = errors.New("validation")                // 400
	ErrNotFound                = errors.New("not found")                 // 404
	ErrInsufficientStock       = errors.New("insufficient stock")        // 400
	ErrPermissionDenied        = errors.New("permission denied")         // 403
	ErrInvalidStatusTransition = errors.New("invalid status transition") // 400
	ErrConflict                = errors.New("conflict")                  // 409
	ErrUnauthorized            = errors.New("unauthorized")              // 401
)

var (
	ErrProductNotFound     = fmt.Errorf("product %w", ErrNotFound)
	ErrOrderNotFound       = fmt.Errorf("order %w", ErrNotFound)
	ErrCartItemNotFound    = fmt.Errorf("cart item %w", ErrNotFound)
	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)
	ErrInvalidCredentials  = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	ErrInvalidRefreshToken = fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
)
