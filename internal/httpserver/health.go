package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type HealthHTTP struct {
	DB      *gorm.DB
	Service string
	Version string
}

func (h *HealthHTTP) Live(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func (h *HealthHTTP) Ready(c echo.Context) error {
	ctx := c.Request().Context()
	if err := pkgdb.Ping(ctx, h.DB); err != nil {
		logging.FromContext(ctx).Warn("ready_check_failed", "status", 503, "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHTTP) VersionInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"service": h.Service, "version": h.Version})
}
