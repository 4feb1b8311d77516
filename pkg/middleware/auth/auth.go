package middleware

import (
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"

	tokenContextKey = "user"
)

type Auth struct {
	jwt echo.MiddlewareFunc
}

// New accepts the access token either as a bearer header or as the
// accessToken cookie set at login.
func New(secret []byte) *Auth {
	return &Auth{
		jwt: echojwt.WithConfig(echojwt.Config{
			SigningKey:    secret,
			SigningMethod: jwt.SigningMethodHS256.Alg(),
			ContextKey:    tokenContextKey,
			TokenLookup:   "header:Authorization:Bearer ,cookie:accessToken",
			NewClaimsFunc: func(c echo.Context) jwt.Claims {
				return new(tokens.AccessClaims)
			},
			ErrorHandler: func(c echo.Context, err error) error {
				logging.FromContext(c.Request().Context()).
					Warn("auth_error", "status", 401, "error", err)
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing access token")
			},
		}),
	}
}

func (a *Auth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return a.jwt(setUserContext(next))
}

func (a *Auth) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return a.RequireAuth(func(c echo.Context) error {
		if role, _ := c.Get(ContextRole).(string); role != tokens.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	})
}

func setUserContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := claimsFrom(c)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}
		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextRole, claims.Role)

		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("user_id", userID.String())
		c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, l)))

		return next(c)
	}
}

func claimsFrom(c echo.Context) (*tokens.AccessClaims, error) {
	tkn, ok := c.Get(tokenContextKey).(*jwt.Token)
	if !ok || tkn == nil {
		return nil, errors.New("token missing from context")
	}
	claims, ok := tkn.Claims.(*tokens.AccessClaims)
	if !ok {
		return nil, errors.New("unexpected claims type")
	}
	return claims, nil
}
