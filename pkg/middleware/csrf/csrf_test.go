package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEcho(cfg Config) *echo.Echo {
	e := echo.New()
	e.Use(Middleware(cfg))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	e.GET("/api/cart", ok)
	e.POST("/api/cart/items", ok)
	e.POST("/api/auth/login", ok)
	return e
}

func TestCSRF(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.SkipPaths = []string{"/api/auth/login"}
	e := newEcho(cfg)

	// safe method issues the token
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	token := rec.Header().Get("X-CSRF-Token")
	require.NotEmpty(t, token)

	tests := []struct {
		name   string
		path   string
		setup  func(r *http.Request)
		status int
	}{
		{
			name: "matching token same origin",
			path: "/api/cart/items",
			setup: func(r *http.Request) {
				r.Header.Set("Origin", "http://example.com")
				r.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: token})
				r.Header.Set("X-CSRF-Token", token)
			},
			status: http.StatusNoContent,
		},
		{
			name: "missing header",
			path: "/api/cart/items",
			setup: func(r *http.Request) {
				r.Header.Set("Origin", "http://example.com")
				r.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: token})
			},
			status: http.StatusForbidden,
		},
		{
			name: "foreign origin",
			path: "/api/cart/items",
			setup: func(r *http.Request) {
				r.Header.Set("Origin", "http://evil.test")
				r.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: token})
				r.Header.Set("X-CSRF-Token", token)
			},
			status: http.StatusForbidden,
		},
		{
			name:   "bearer requests pass",
			path:   "/api/cart/items",
			setup:  func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer abc") },
			status: http.StatusNoContent,
		},
		{
			name:   "skipped path",
			path:   "/api/auth/login",
			setup:  func(r *http.Request) {},
			status: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			req.Host = "example.com"
			tt.setup(req)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func issueToken(t *testing.T, e *echo.Echo) string {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	token := rec.Header().Get("X-CSRF-Token")
	require.NotEmpty(t, token)
	return token
}

func TestCSRF_OriginCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cfg    Config
		status int
	}{
		{name: "zero config enforces same origin", cfg: Config{}, status: http.StatusForbidden},
		{name: "cross origin allowed", cfg: Config{AllowCrossOrigin: true}, status: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := newEcho(tt.cfg)
			token := issueToken(t, e)

			req := httptest.NewRequest(http.MethodPost, "/api/cart/items", nil)
			req.Host = "example.com"
			req.Header.Set("Origin", "http://evil.test")
			req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: token})
			req.Header.Set("X-CSRF-Token", token)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
