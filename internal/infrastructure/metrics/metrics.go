package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 規劃結果分類
const (
	OutcomePlanned = "planned"
	OutcomeEmpty   = "empty_catalog"
	OutcomeNoMeals = "no_selection"
)

var (
	// 規劃
	PlansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meal_planner_plans_total",
			Help: "Total number of meal plans generated, by outcome",
		},
		[]string{"outcome"},
	)

	PlanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "meal_planner_plan_duration_seconds",
			Help:    "Duration of a single plan generation in seconds",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5},
		},
	)

	PlanSlots = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "meal_planner_plan_slots",
			Help:    "Number of meal slots planned per request",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 7, 8},
		},
	)

	SlotSelections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meal_planner_slot_selections_total",
			Help: "Total number of slot selections, by relaxation strategy",
		},
		[]string{"strategy"},
	)

	SkippedSlots = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meal_planner_skipped_slots_total",
			Help: "Total number of slots left empty because no candidate remained",
		},
	)

	BatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "meal_planner_batch_size",
			Help:    "Number of plans requested per batch",
			Buckets: []float64{1, 2, 5, 10, 20, 50},
		},
	)

	// 目錄
	CatalogRecipes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "meal_planner_catalog_recipes",
			Help: "Number of recipes in the loaded catalog",
		},
	)

	CatalogLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "meal_planner_catalog_load_duration_seconds",
			Help:    "Duration of catalog loads in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// 快取
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meal_planner_cache_lookups_total",
			Help: "Total number of plan cache lookups, by result",
		},
		[]string{"result"},
	)

	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meal_planner_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meal_planner_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "meal_planner_api_active_requests",
			Help: "Number of in-flight API requests",
		},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meal_planner_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)

// RecordPlan 記錄一次規劃
func RecordPlan(outcome string, slots int, strategies []string, skipped int, duration time.Duration) {
	PlansTotal.WithLabelValues(outcome).Inc()
	PlanDuration.Observe(duration.Seconds())
	if slots > 0 {
		PlanSlots.Observe(float64(slots))
	}
	for _, s := range strategies {
		SlotSelections.WithLabelValues(s).Inc()
	}
	if skipped > 0 {
		SkippedSlots.Add(float64(skipped))
	}
}

// RecordCatalogLoad 記錄目錄載入
func RecordCatalogLoad(recipes int, duration time.Duration) {
	CatalogRecipes.Set(float64(recipes))
	CatalogLoadDuration.Observe(duration.Seconds())
}

// RecordCacheLookup 記錄快取查詢結果
func RecordCacheLookup(hit bool) {
	if hit {
		CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	CacheLookups.WithLabelValues("miss").Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
