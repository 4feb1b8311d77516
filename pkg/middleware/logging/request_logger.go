package loggingmw

import (
	"context"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

const headerIdempotencyKey = "Idempotency-Key"

// RequestLogger puts a request-scoped logger into the request context and
// writes one completion record per request. It must run after echo's
// RequestID middleware.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			l := base.With("method", req.Method, "route", c.Path())

			// RequestID only sets the response header when the client sent none.
			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = c.Response().Header().Get(echo.HeaderXRequestID)
			}
			if rid != "" {
				l = l.With("request_id", rid)
				c.Response().Header().Set(echo.HeaderXRequestID, rid)
			}
			if key := req.Header.Get(headerIdempotencyKey); key != "" {
				l = l.With("idempotency_key", key)
			}
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			res := c.Response()
			attrs := []slog.Attr{
				slog.Int("status", res.Status),
				slog.Int64("bytes", res.Size),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.String("path", req.URL.Path),
				slog.String("remote_ip", c.RealIP()),
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
			}
			l.LogAttrs(context.Background(), levelFor(res.Status), "http_request", attrs...)
			return nil
		}
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
