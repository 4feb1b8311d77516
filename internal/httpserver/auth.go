package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type AuthHTTP struct {
	Svc          *service.AuthService
	CookieSecure bool
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(l, "register_error", "invalid body", err)
	}

	user, err := h.Svc.Register(ctx, service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return fail(l, "register_error", err)
	}

	l.Info("register_success", "user_id", user.ID.String())
	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(l, "login_error", "invalid body", err)
	}

	res, err := h.Svc.Login(ctx, req.Login, req.Password)
	if err != nil {
		return fail(l, "login_error", err)
	}

	h.setTokenCookies(c, res)
	l.Info("login_success", "user_id", res.User.ID.String())
	return c.JSON(http.StatusOK, tokenResponse(res))
}

// Refresh takes the refresh token from the body or, failing that, from the
// refreshToken cookie.
func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "refresh_error", "invalid body", err)
	}
	token := req.RefreshToken
	if token == "" {
		if ck, err := c.Cookie(refreshCookie); err == nil {
			token = ck.Value
		}
	}
	if token == "" {
		return fail(l, "refresh_error", service.ErrInvalidRefreshToken)
	}

	res, err := h.Svc.Refresh(ctx, token)
	if err != nil {
		return fail(l, "refresh_error", err)
	}

	h.setTokenCookies(c, res)
	l.Info("refresh_success", "user_id", res.User.ID.String())
	return c.JSON(http.StatusOK, tokenResponse(res))
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	var req transport.RefreshRequest
	_ = c.Bind(&req)
	token := req.RefreshToken
	if token == "" {
		if ck, err := c.Cookie(refreshCookie); err == nil {
			token = ck.Value
		}
	}

	if err := h.Svc.Logout(ctx, token); err != nil {
		return fail(l, "logout_error", err)
	}

	c.SetCookie(deleteCookie(accessCookie, "/", h.CookieSecure))
	c.SetCookie(deleteCookie(refreshCookie, refreshPath, h.CookieSecure))
	l.Info("logout_success")
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHTTP) setTokenCookies(c echo.Context, res *service.LoginResult) {
	c.SetCookie(createCookie(accessCookie, res.AccessToken, "/", res.AccessExp, h.CookieSecure))
	c.SetCookie(createCookie(refreshCookie, res.RefreshToken, refreshPath, res.RefreshExp, h.CookieSecure))
}

func tokenResponse(res *service.LoginResult) transport.TokenResponse {
	return transport.TokenResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(time.Until(res.AccessExp).Seconds()),
		UserID:       res.User.ID,
		Role:         res.User.Role,
	}
}
