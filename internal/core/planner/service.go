package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"meal-planner/internal/core/cache"
	"meal-planner/internal/core/catalog"
	"meal-planner/internal/core/mealplan"
	"meal-planner/internal/core/queue"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/infrastructure/metrics"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// Service 串接目錄、引擎、快取與隊列
type Service struct {
	cfg    config.PlannerConfig
	engine *mealplan.Engine
	cache  cache.Cache
	queue  *queue.Manager
	seeds  *seedSource

	mu          sync.RWMutex
	catalog     *mealplan.Catalog
	source      catalog.Source
	fingerprint string
}

// NewService 建立服務；cache 與 queue 可為 nil
func NewService(cfg config.PlannerConfig, c cache.Cache, q *queue.Manager) *Service {
	return &Service{
		cfg:    cfg,
		engine: mealplan.NewEngine(),
		cache:  c,
		queue:  q,
		seeds:  newSeedSource(),
	}
}

// SetCatalog 替換目前使用的目錄，進行中的請求仍使用舊目錄
func (s *Service) SetCatalog(cat *mealplan.Catalog, source catalog.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.catalog = cat
	s.source = source
	s.fingerprint = fmt.Sprintf("%s|%s|%d|%d", source.Kind, source.Location, cat.Len(), source.LoadedAt.UnixNano())
	metrics.CatalogRecipes.Set(float64(cat.Len()))
}

// Reload 依設定重新載入目錄
func (s *Service) Reload(ctx context.Context, cfg config.CatalogConfig) error {
	start := time.Now()
	cat, source, err := catalog.Load(ctx, cfg)
	if err != nil {
		return err
	}
	s.SetCatalog(cat, source)
	metrics.RecordCatalogLoad(cat.Len(), time.Since(start))
	return nil
}

func (s *Service) snapshot() (*mealplan.Catalog, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog, s.fingerprint
}

// Ready 目錄是否已載入
func (s *Service) Ready() bool {
	cat, _ := s.snapshot()
	return cat != nil
}

// Source 目前目錄的來源
func (s *Service) Source() catalog.Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// CacheStats 快取停用時回傳 nil
func (s *Service) CacheStats() *cache.Stats {
	if s.cache == nil {
		return nil
	}
	stats := s.cache.Stats()
	return &stats
}

// QueueStatus 沒有隊列時回傳 nil
func (s *Service) QueueStatus() *queue.Status {
	if s.queue == nil {
		return nil
	}
	status := s.queue.GetQueueStatus()
	return &status
}

// resolve 驗證請求並套用預設值
func (s *Service) resolve(req PlanRequest) (resolved, error) {
	prefs, err := req.Preferences.ToPreferenceSet()
	if err != nil {
		return resolved{}, err
	}
	mode, err := mealplan.ParseTargetMode(common.FirstNonEmpty(req.TargetMode, s.cfg.TargetMode))
	if err != nil {
		return resolved{}, err
	}

	r := resolved{
		Preferences:    prefs,
		TargetCalories: orDefault(req.TargetCalories, s.cfg.TargetCalories),
		TargetProtein:  orDefault(req.TargetProtein, s.cfg.TargetProtein),
		Tolerance:      orDefault(req.Tolerance, s.cfg.Tolerance),
		MaxSlots:       req.MaxSlots,
		Mode:           mode,
		AllowRepeats:   s.cfg.AllowRepeats,
	}
	if r.MaxSlots == 0 {
		r.MaxSlots = s.cfg.MaxSlots
	}
	if req.AllowRepeats != nil {
		r.AllowRepeats = *req.AllowRepeats
	}

	if r.TargetCalories <= 0 || r.TargetProtein <= 0 {
		return resolved{}, common.NewValidationError("target_calories and target_protein must be positive")
	}
	if r.Tolerance <= 0 || r.Tolerance >= 1 {
		return resolved{}, common.NewValidationError("tolerance must be between 0 and 1")
	}
	if r.MaxSlots < 1 {
		return resolved{}, common.NewValidationError("max_slots must be at least 1")
	}
	return r, nil
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// GeneratePlan 產生一份計畫。指定種子的請求結果可重現，因此會被快取
func (s *Service) GeneratePlan(ctx context.Context, req PlanRequest) (*PlanResponse, error) {
	r, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, r, req.Seed != nil, req.Seed)
}

func (s *Service) generate(ctx context.Context, r resolved, seeded bool, seed *int64) (*PlanResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.ErrRequestTimeout.Wrap(err)
	}

	cat, fingerprint := s.snapshot()
	if cat == nil {
		return nil, common.ErrCatalogNotLoaded
	}
	r.Catalog = fingerprint
	if seeded {
		r.Seed = *seed
	} else {
		r.Seed = s.seeds.next()
	}

	var key string
	if seeded && s.cache != nil {
		key = s.cacheKey(r)
		if resp, ok := s.fromCache(ctx, key); ok {
			return resp, nil
		}
	}

	start := time.Now()
	res := s.engine.Generate(cat, r.engineRequest(), rand.New(rand.NewSource(r.Seed)))
	s.record(res, time.Since(start))

	resp := &PlanResponse{
		ID:          common.GenerateUUID(),
		Plan:        res.Plan,
		Summary:     res.Summary,
		Filtered:    res.Filtered,
		Slots:       res.Slots,
		Skipped:     res.Skipped,
		Seed:        r.Seed,
		GeneratedAt: time.Now(),
	}

	common.LogInfo("計畫已產生",
		zap.String("plan_id", resp.ID),
		zap.Int("filtered", res.Filtered),
		zap.Int("slots", len(res.Slots)),
		zap.Int("skipped", len(res.Skipped)),
		zap.String("summary", res.Summary),
		zap.Duration("耗時", time.Since(start)),
	)

	if key != "" {
		s.toCache(ctx, key, resp)
	}
	return resp, nil
}

func (s *Service) record(res mealplan.Result, d time.Duration) {
	outcome := metrics.OutcomePlanned
	var strategies []string
	switch {
	case res.Plan != nil:
		for _, m := range res.Plan.Meals {
			strategies = append(strategies, m.Strategy)
		}
	case res.Summary == mealplan.EmptyCatalogSummary:
		outcome = metrics.OutcomeEmpty
	default:
		outcome = metrics.OutcomeNoMeals
	}
	metrics.RecordPlan(outcome, len(res.Slots), strategies, len(res.Skipped), d)
}

func (s *Service) cacheKey(r resolved) string {
	payload, _ := json.Marshal(r)
	return cache.Key("plan", payload)
}

func (s *Service) fromCache(ctx context.Context, key string) (*PlanResponse, bool) {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, common.ErrCacheMiss) {
			common.LogWarn("讀取快取失敗", zap.Error(err))
		}
		metrics.RecordCacheLookup(false)
		return nil, false
	}

	var resp PlanResponse
	if err := common.ParseJSON(data, &resp); err != nil {
		common.LogWarn("快取內容無法解析", zap.String("鍵", key), zap.Error(err))
		metrics.RecordCacheLookup(false)
		return nil, false
	}
	metrics.RecordCacheLookup(true)

	resp.ID = common.GenerateUUID()
	resp.CacheHit = true
	resp.GeneratedAt = time.Now()
	return &resp, true
}

func (s *Service) toCache(ctx context.Context, key string, resp *PlanResponse) {
	data, err := common.ToJSON(resp)
	if err != nil {
		common.LogWarn("計畫無法序列化", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, data); err != nil {
		common.LogWarn("寫入快取失敗", zap.String("鍵", key), zap.Error(err))
	}
}

// GenerateBatch 透過隊列並行處理多個請求，任一請求無效時整批拒絕
func (s *Service) GenerateBatch(ctx context.Context, reqs []PlanRequest) (*BatchResponse, error) {
	if len(reqs) == 0 {
		return nil, common.NewValidationError("batch must contain at least one request")
	}
	if s.cfg.MaxBatch > 0 && len(reqs) > s.cfg.MaxBatch {
		return nil, common.ErrBatchTooLarge.Wrap(fmt.Errorf("got %d requests, limit is %d", len(reqs), s.cfg.MaxBatch))
	}

	items := make([]resolved, len(reqs))
	for i, req := range reqs {
		r, err := s.resolve(req)
		if err != nil {
			return nil, common.NewValidationError(fmt.Sprintf("requests[%d]: %v", i, err))
		}
		items[i] = r
	}
	metrics.BatchSize.Observe(float64(len(reqs)))

	results := make([]*PlanResponse, len(reqs))
	run := func(i int) queue.Job {
		return func(ctx context.Context) error {
			resp, err := s.generate(ctx, items[i], reqs[i].Seed != nil, reqs[i].Seed)
			if err != nil {
				return err
			}
			results[i] = resp
			return nil
		}
	}

	if s.queue == nil {
		for i := range items {
			if err := run(i)(ctx); err != nil {
				return nil, err
			}
		}
		return &BatchResponse{Results: results}, nil
	}

	pending := make([]<-chan error, 0, len(items))
	for i := range items {
		ch, err := s.queue.Enqueue(ctx, run(i))
		if err != nil {
			return nil, err
		}
		pending = append(pending, ch)
	}
	if err := queue.Wait(ctx, pending); err != nil {
		return nil, err
	}

	common.LogInfo("批次計畫已完成", zap.Int("count", len(results)))
	return &BatchResponse{Results: results}, nil
}

// Preview 回傳偏好過濾後的食譜數量
func (s *Service) Preview(prefs PreferencesInput) (*PreviewResponse, error) {
	cat, _ := s.snapshot()
	if cat == nil {
		return nil, common.ErrCatalogNotLoaded
	}
	set, err := prefs.ToPreferenceSet()
	if err != nil {
		return nil, err
	}
	filtered := mealplan.Filter(cat, set)
	return &PreviewResponse{
		Matching:       filtered.Len(),
		ByMealCategory: mealplan.CountByMealCategory(filtered),
	}, nil
}

// Stats 目錄統計
func (s *Service) Stats() (mealplan.CatalogStats, error) {
	cat, _ := s.snapshot()
	if cat == nil {
		return mealplan.CatalogStats{}, common.ErrCatalogNotLoaded
	}
	return mealplan.ComputeStats(cat), nil
}

// Recipe 依 ID 取得食譜
func (s *Service) Recipe(id int64) (*mealplan.Recipe, error) {
	cat, _ := s.snapshot()
	if cat == nil {
		return nil, common.ErrCatalogNotLoaded
	}
	r, ok := cat.Get(id)
	if !ok {
		return nil, common.ErrNotFound.Wrap(fmt.Errorf("recipe %d", id))
	}
	return r, nil
}

// Close 關閉快取與隊列
func (s *Service) Close() error {
	if s.queue != nil {
		s.queue.Close()
	}
	if s.cache != nil {
		return s.cache.Close()
	}
	return nil
}
