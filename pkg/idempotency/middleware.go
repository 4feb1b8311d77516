package idempotency

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

const HeaderKey = "Idempotency-Key"

type Checker interface {
	Seen(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
}

// ScopeFunc namespaces a client key, usually by the authenticated user.
type ScopeFunc func(c echo.Context) string

type DuplicateResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Middleware rejects a replayed Idempotency-Key with 409. A key whose first
// request failed is released so the client may retry with it. Requests
// without the header pass through untouched.
func Middleware(checker Checker, scope ScopeFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get(HeaderKey)
			if raw == "" || checker == nil {
				return next(c)
			}

			ctx := c.Request().Context()
			l := logging.FromContext(ctx).With("middleware", "idempotency")

			key := fmt.Sprintf("idem:%s:%s:%s", c.Path(), scope(c), raw)
			seen, err := checker.Seen(ctx, key)
			if err != nil {
				l.Error("idempotency_error", "status", 503, "reason", "store unavailable", "error", err)
				return echo.NewHTTPError(http.StatusServiceUnavailable, "idempotency store unavailable")
			}
			if seen {
				l.Warn("idempotency_duplicate", "status", 409, "key", raw)
				return echo.NewHTTPError(http.StatusConflict, DuplicateResponse{
					Code:    "DUPLICATE_REQUEST",
					Message: "request with this Idempotency-Key was already processed",
				})
			}

			err = next(c)
			if err != nil || c.Response().Status >= http.StatusBadRequest {
				if fErr := checker.Forget(context.WithoutCancel(ctx), key); fErr != nil {
					l.Warn("idempotency_release_failed", "key", raw, "error", fErr)
				}
			}
			return err
		}
	}
}
