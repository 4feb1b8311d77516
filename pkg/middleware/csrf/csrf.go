package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

type Config struct {
	CookieName string
	HeaderName string
	FormField  string

	CookiePath string
	Domain     string
	Secure     bool
	SameSite   http.SameSite
	MaxAge     time.Duration

	// AllowCrossOrigin turns off the Origin/Referer check. The zero value
	// enforces same origin.
	AllowCrossOrigin bool

	// SkipPaths are exact request paths that bypass the check.
	SkipPaths []string
}

func DefaultConfig() Config {
	return Config{
		CookieName: "XSRF-TOKEN",
		HeaderName: "X-CSRF-Token",
		FormField:  "csrf_token",
		CookiePath: "/",
		Secure:     true,
		SameSite:   http.SameSiteLaxMode,
		MaxAge:     24 * time.Hour,
	}
}

// Middleware implements the double-submit cookie pattern. Requests that
// authenticate with a bearer token carry no ambient credentials and are
// passed through.
func Middleware(cfg Config) echo.MiddlewareFunc {
	def := DefaultConfig()
	if cfg.CookieName == "" {
		cfg.CookieName = def.CookieName
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = def.HeaderName
	}
	if cfg.FormField == "" {
		cfg.FormField = def.FormField
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = def.CookiePath
	}
	if cfg.SameSite == 0 {
		cfg.SameSite = def.SameSite
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = def.MaxAge
	}

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			if _, ok := skip[req.URL.Path]; ok {
				return next(c)
			}
			if hasBearer(req) {
				return next(c)
			}

			l := logging.FromContext(req.Context()).With("middleware", "csrf")

			token := readCookie(req, cfg.CookieName)
			if token == "" {
				var err error
				token, err = newToken(32)
				if err != nil {
					l.Error("csrf_error", "status", 500, "reason", "cannot create token", "error", err)
					return echo.NewHTTPError(http.StatusInternalServerError, "failed to create CSRF token")
				}
			}
			setCSRFCookie(c, cfg, token)

			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				c.Response().Header().Set(cfg.HeaderName, token)
				return next(c)
			}

			if !cfg.AllowCrossOrigin && !sameOrigin(req) {
				l.Warn("csrf_error", "status", 403, "reason", "invalid origin")
				return echo.NewHTTPError(http.StatusForbidden, "invalid origin")
			}

			provided := req.Header.Get(cfg.HeaderName)
			if provided == "" {
				if err := req.ParseForm(); err == nil {
					provided = req.FormValue(cfg.FormField)
				}
			}
			if !secureCompare(token, provided) {
				l.Warn("csrf_error", "status", 403, "reason", "token mismatch")
				return echo.NewHTTPError(http.StatusForbidden, "invalid CSRF token")
			}

			c.Set("csrf_token", token)
			return next(c)
		}
	}
}

func hasBearer(r *http.Request) bool {
	h := r.Header.Get(echo.HeaderAuthorization)
	return len(h) > len("Bearer ") && strings.EqualFold(h[:len("Bearer ")], "Bearer ")
}

func newToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func setCSRFCookie(c echo.Context, cfg Config, token string) {
	c.SetCookie(&http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     cfg.CookiePath,
		Domain:   cfg.Domain,
		Secure:   cfg.Secure,
		HttpOnly: false,
		MaxAge:   int(cfg.MaxAge.Seconds()),
		SameSite: cfg.SameSite,
	})
}

func readCookie(req *http.Request, name string) string {
	c, err := req.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func secureCompare(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		ref := r.Header.Get("Referer")
		if ref == "" {
			return false
		}
		origin = ref
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, schemeOf(r)) && strings.EqualFold(u.Host, r.Host)
}

func schemeOf(r *http.Request) string {
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		return p
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
