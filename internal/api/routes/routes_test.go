package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-harvester/internal/config"
	"review-harvester/internal/scraper"
	"review-harvester/internal/scraper/workers"
	"review-harvester/pkg/models"
)

type stubScraper struct{}

func (stubScraper) ScrapeReviews(context.Context, string) (*scraper.Result, error) {
	return &scraper.Result{Reviews: []models.Review{{
		ReviewDraft: models.ReviewDraft{Text: "Top", Rating: 5, Images: []string{}},
		Name:        "Ana Maria Silva",
	}}}, nil
}

func (stubScraper) IsHealthy() bool { return true }

func newServer(t *testing.T) *echo.Echo {
	t.Helper()

	cfg := config.Default()
	cfg.Metrics.Enabled = true
	cfg.Workers.RateLimit = 600
	cfg.Workers.Burst = 100

	pm := workers.NewPoolManager(cfg, stubScraper{})
	require.NoError(t, pm.Initialize())
	t.Cleanup(func() { _ = pm.Shutdown() })

	e := echo.New()
	SetupRoutes(e, cfg, Dependencies{
		PoolManager: pm,
		Now:         func() time.Time { return time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC) },
	})
	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRoutes_Registered(t *testing.T) {
	e := newServer(t)

	for _, target := range []string{"/", "/health", "/health/live", "/health/ready", "/status", "/metrics", "/api/workers/stats", "/api/domains/aliexpress.com/stats"} {
		rec := do(e, http.MethodGet, target, "")
		assert.Equal(t, http.StatusOK, rec.Code, target)
		assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID), target)
	}
}

func TestRoutes_ScrapeThroughPool(t *testing.T) {
	e := newServer(t)

	rec := do(e, http.MethodPost, "/api/scrape-reviews", `{"url":"https://pt.aliexpress.com/item/1.html"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Ana Maria Silva"`)
	assert.Contains(t, rec.Body.String(), `"count":1`)
}

func TestRoutes_ScrapeRejectsForeignURL(t *testing.T) {
	e := newServer(t)

	rec := do(e, http.MethodPost, "/api/scrape-reviews", `{"url":"https://example.com/item/1.html"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRoutes_Export(t *testing.T) {
	e := newServer(t)

	rec := do(e, http.MethodPost, "/api/export-reviews", `{"reviews":[{"text":"Top","rating":5,"images":[],"name":"Ana Maria Silva"}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "title,body,rating"))
}

func TestRoutes_IncomingRequestIDIsEchoed(t *testing.T) {
	e := newServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(echo.HeaderXRequestID, "abc-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(echo.HeaderXRequestID))
}

func TestRoutes_MetricsCountRequests(t *testing.T) {
	e := newServer(t)

	do(e, http.MethodGet, "/health/live", "")
	rec := do(e, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
