package bootstrap_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohammadpnp/household-import/internal/bootstrap"
	httpecho "github.com/mohammadpnp/household-import/internal/interfaces/http/echo"
)

func TestHTTPServerHealthz(t *testing.T) {
	t.Parallel()

	logger, hook := test.NewNullLogger()
	server := bootstrap.NewHTTPServer(logger, "1M")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(httpecho.HeaderUserID, "user-1")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	require.NotEmpty(t, hook.AllEntries())
	entry := hook.LastEntry()
	assert.Equal(t, "/healthz", entry.Data["uri"])
	assert.Equal(t, "user-1", entry.Data["user_id"])
}

func TestHTTPServerMetrics(t *testing.T) {
	t.Parallel()

	logger, _ := test.NewNullLogger()
	server := bootstrap.NewHTTPServer(logger, "1M")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "go_goroutines"))
}

func TestHTTPServerBodyLimit(t *testing.T) {
	t.Parallel()

	logger, _ := test.NewNullLogger()
	server := bootstrap.NewHTTPServer(logger, "1K")
	server.POST("/echo", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 4096)))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
