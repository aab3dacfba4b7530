package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/core/catalog"
	"meal-planner/internal/core/mealplan"
	"meal-planner/internal/core/planner"
	"meal-planner/internal/core/queue"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Version: "test", Debug: true},
		Server: config.ServerConfig{
			Port:           8080,
			RequestTimeout: 5 * time.Second,
			MaxBodyBytes:   1 << 20,
		},
		Planner: config.PlannerConfig{
			TargetCalories: 2400,
			TargetProtein:  120,
			Tolerance:      0.2,
			MaxSlots:       6,
			TargetMode:     "fixed",
			AllowRepeats:   true,
			MaxBatch:       3,
		},
		Queue:       config.QueueConfig{Workers: 2, MaxSize: 10},
		RateLimit:   config.RateLimitConfig{Enabled: false, Requests: 100, Window: time.Minute},
		Metrics:     config.MetricsConfig{Enabled: true, Path: "/metrics"},
		DedupWindow: time.Nanosecond,
	}
}

func testCatalog() *mealplan.Catalog {
	rating := 4.0
	var recipes []*mealplan.Recipe
	id := int64(1)
	for _, cat := range mealplan.MealCategories {
		for cal := 200.0; cal <= 1200; cal += 200 {
			recipes = append(recipes, &mealplan.Recipe{
				ID:           id,
				Name:         "recipe",
				MealCategory: cat,
				Calories:     cal,
				Protein:      cal / 20,
				Rating:       &rating,
				Flags:        mealplan.FlagVegetarian,
			})
			id++
		}
	}
	return mealplan.NewCatalog(recipes)
}

func setup(t *testing.T, cfg *config.Config, loaded bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := planner.NewService(cfg.Planner, nil, queue.NewManager(cfg.Queue))
	if loaded {
		svc.SetCatalog(testCatalog(), catalog.Source{Kind: "test", Location: "memory", LoadedAt: time.Now()})
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = svc.Close()
	})
	return SetupRouter(ctx, cfg, svc)
}

func perform(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoints(t *testing.T) {
	r := setup(t, testConfig(), true)

	w := perform(r, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])
	assert.NotNil(t, health["catalog"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/ready", "").Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/live", "").Code)

	w = perform(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "meal_planner_catalog_recipes")
}

func TestNotReady(t *testing.T) {
	r := setup(t, testConfig(), false)

	assert.Equal(t, http.StatusServiceUnavailable, perform(r, http.MethodGet, "/ready", "").Code)

	w := perform(r, http.MethodPost, "/api/v1/plans", `{}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "CATALOG_NOT_LOADED")
}

func TestGeneratePlan(t *testing.T) {
	r := setup(t, testConfig(), true)

	w := perform(r, http.MethodPost, "/api/v1/plans", `{"target_calories":2000,"target_protein":100,"max_slots":4,"seed":5}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp planner.PlanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Plan)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, int64(5), resp.Seed)
	assert.NotEmpty(t, resp.Plan.Meals)
	assert.LessOrEqual(t, len(resp.Plan.Meals), 4)
}

func TestGeneratePlanEmptyFilter(t *testing.T) {
	r := setup(t, testConfig(), true)

	w := perform(r, http.MethodPost, "/api/v1/plans", `{"preferences":{"vegan":true}}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp["plan"])
	assert.Equal(t, mealplan.EmptyCatalogSummary, resp["summary"])
}

func TestGeneratePlanValidation(t *testing.T) {
	r := setup(t, testConfig(), true)

	cases := []string{
		`{"target_calories":100}`,
		`{"target_protein":1000}`,
		`{"tolerance":1.5}`,
		`{"max_slots":12}`,
		`{"target_mode":"greedy"}`,
		`{"preferences":{"calories":"huge"}}`,
		`not json`,
	}
	for _, body := range cases {
		w := perform(r, http.MethodPost, "/api/v1/plans", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Contains(t, w.Body.String(), common.ErrCodeInvalidRequest, body)
	}
}

func TestBatch(t *testing.T) {
	r := setup(t, testConfig(), true)

	w := perform(r, http.MethodPost, "/api/v1/plans/batch", `{"requests":[{"seed":1},{"seed":2,"target_mode":"adaptive"}]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp planner.BatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Results, 2)

	w = perform(r, http.MethodPost, "/api/v1/plans/batch", `{"requests":[{},{},{},{}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "BATCH_TOO_LARGE")

	w = perform(r, http.MethodPost, "/api/v1/plans/batch", `{"requests":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogEndpoints(t *testing.T) {
	r := setup(t, testConfig(), true)

	w := perform(r, http.MethodPost, "/api/v1/catalog/preview", `{"vegetarian":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	var preview planner.PreviewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &preview))
	assert.Equal(t, 18, preview.Matching)

	w = perform(r, http.MethodGet, "/api/v1/catalog/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	var stats mealplan.CatalogStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 18, stats.TotalRecipes)

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/api/v1/recipes/3", "").Code)
	assert.Equal(t, http.StatusNotFound, perform(r, http.MethodGet, "/api/v1/recipes/999", "").Code)
	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodGet, "/api/v1/recipes/abc", "").Code)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, Requests: 2, Window: time.Hour}
	r := setup(t, cfg, true)

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/api/v1/catalog/stats", "").Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/api/v1/catalog/stats", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, perform(r, http.MethodGet, "/api/v1/catalog/stats", "").Code)

	// 健康檢查不受限流影響
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/health", "").Code)
}
