package loggingmw

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(line, &rec))
		out = append(out, rec)
	}
	return out
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	e := echo.New()
	e.Use(RequestLogger(base))
	e.POST("/api/orders", func(c echo.Context) error {
		logging.FromContext(c.Request().Context()).Info("order_placed")
		return c.NoContent(http.StatusCreated)
	})
	e.GET("/api/orders/:id", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
	req.Header.Set(echo.HeaderXRequestID, "rid-1")
	req.Header.Set(headerIdempotencyKey, "key-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "rid-1", rec.Header().Get(echo.HeaderXRequestID))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "order_placed", lines[0]["msg"])
	assert.Equal(t, "rid-1", lines[0]["request_id"])
	assert.Equal(t, "key-1", lines[0]["idempotency_key"])
	assert.Equal(t, "http_request", lines[1]["msg"])
	assert.Equal(t, "INFO", lines[1]["level"])
	assert.Equal(t, "/api/orders", lines[1]["route"])

	buf.Reset()
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/42", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	lines = decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "WARN", lines[0]["level"])
	assert.EqualValues(t, 404, lines[0]["status"])
	assert.Equal(t, "/api/orders/:id", lines[0]["route"])
	assert.Equal(t, "/api/orders/42", lines[0]["path"])
}

func TestLevelFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelInfo, levelFor(http.StatusOK))
	assert.Equal(t, slog.LevelWarn, levelFor(http.StatusConflict))
	assert.Equal(t, slog.LevelError, levelFor(http.StatusServiceUnavailable))
}
