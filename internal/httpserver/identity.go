package httpserver

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

// actorFrom reads the identity the auth middleware stored on the context.
// An anonymous request yields the zero Actor.
func actorFrom(c echo.Context) service.Actor {
	id, _ := c.Get(middleware.ContextUserID).(uuid.UUID)
	role, _ := c.Get(middleware.ContextRole).(string)
	return service.Actor{UserID: id, Role: role}
}

func userScope(c echo.Context) string {
	return actorFrom(c).UserID.String()
}

func parseID(c echo.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}
