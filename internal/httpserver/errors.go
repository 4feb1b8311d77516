package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const (
	CodeValidation              = "VALIDATION_ERROR"
	CodeProductNotFound         = "PRODUCT_NOT_FOUND"
	CodeOrderNotFound           = "ORDER_NOT_FOUND"
	CodeCartItemNotFound        = "CART_ITEM_NOT_FOUND"
	CodeUserNotFound            = "USER_NOT_FOUND"
	CodeNotFound                = "NOT_FOUND"
	CodeInsufficientStock       = "INSUFFICIENT_STOCK"
	CodePermissionDenied        = "PERMISSION_DENIED"
	CodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	CodeConflict                = "CONFLICT"
	CodeUnauthorized            = "UNAUTHORIZED"
	CodeInternal                = "INTERNAL_ERROR"
)

// classify maps a service error to its HTTP status and stable code. The
// more specific not-found sentinels are checked before ErrNotFound.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, service.ErrProductNotFound):
		return http.StatusNotFound, CodeProductNotFound
	case errors.Is(err, service.ErrOrderNotFound):
		return http.StatusNotFound, CodeOrderNotFound
	case errors.Is(err, service.ErrCartItemNotFound):
		return http.StatusNotFound, CodeCartItemNotFound
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, CodeUserNotFound
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, service.ErrInsufficientStock):
		return http.StatusBadRequest, CodeInsufficientStock
	case errors.Is(err, service.ErrPermissionDenied):
		return http.StatusForbidden, CodePermissionDenied
	case errors.Is(err, service.ErrInvalidStatusTransition):
		return http.StatusBadRequest, CodeInvalidStatusTransition
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, CodeConflict
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, CodeUnauthorized
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// fail logs err under event and turns it into the JSON error response.
// Internal errors are logged in full but never shown to the client.
func fail(l *slog.Logger, event string, err error) error {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		l.Error(event, "status", status, "reason", code, "error", err)
		return echo.NewHTTPError(status, transport.ErrorResponse{Code: code, Message: "internal error"})
	}
	l.Warn(event, "status", status, "reason", code, "error", err)
	return echo.NewHTTPError(status, transport.ErrorResponse{Code: code, Message: err.Error()})
}

func badRequest(l *slog.Logger, event, reason string, err error) error {
	l.Warn(event, "status", 400, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, transport.ErrorResponse{Code: CodeValidation, Message: reason})
}

// ErrorHandler writes every error as {"code","message"}, including the plain
// string errors raised by middleware and the router.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	var body any = transport.ErrorResponse{Code: CodeInternal, Message: "internal error"}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		switch msg := he.Message.(type) {
		case transport.ErrorResponse:
			body = msg
		case string:
			body = transport.ErrorResponse{Code: codeForStatus(status), Message: msg}
		default:
			body = msg
		}
	} else {
		logging.FromContext(c.Request().Context()).Error("unhandled_error", "error", err)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = c.JSON(status, body)
	}
	if werr != nil {
		logging.FromContext(c.Request().Context()).Error("error_response_failed", "error", werr)
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeValidation
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodePermissionDenied
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	default:
		if status >= http.StatusInternalServerError {
			return CodeInternal
		}
		return http.StatusText(status)
	}
}
