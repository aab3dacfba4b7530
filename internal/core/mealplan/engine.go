package mealplan

import (
	"fmt"
	"strings"

	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// TargetMode 每個時段目標的計算方式
type TargetMode string

const (
	// TargetFixed 依權重一次算好，不因前面的選擇調整
	TargetFixed TargetMode = "fixed"
	// TargetAdaptive 每個時段以剩餘目標除以剩餘時段數重新計算
	TargetAdaptive TargetMode = "adaptive"
)

// ParseTargetMode 空字串視為 fixed
func ParseTargetMode(s string) (TargetMode, error) {
	switch TargetMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", TargetFixed:
		return TargetFixed, nil
	case TargetAdaptive:
		return TargetAdaptive, nil
	}
	return TargetFixed, common.NewValidationError(fmt.Sprintf("invalid target mode %q: want fixed or adaptive", s))
}

// Request 一次規劃的輸入
type Request struct {
	Preferences    PreferenceSet
	TargetCalories float64
	TargetProtein  float64
	Tolerance      float64
	MaxSlots       int
	Mode           TargetMode
	AllowRepeats   bool
}

// Result 規劃結果。Plan 為 nil 時 Summary 說明原因
type Result struct {
	Plan     *Plan
	Summary  string
	Filtered int
	Slots    []Slot
	Skipped  []string
}

// Engine 餐點分配引擎，本身不保存狀態，可同時被多個請求使用
type Engine struct {
	ladder []Strategy
}

// NewEngine 未指定放寬層級時使用 DefaultLadder
func NewEngine(ladder ...Strategy) *Engine {
	if len(ladder) == 0 {
		ladder = DefaultLadder
	}
	return &Engine{ladder: ladder}
}

// Generate 過濾目錄、決定時段、逐一選擇食譜並組成計畫
func (e *Engine) Generate(catalog *Catalog, req Request, rnd Rand) Result {
	filtered := Filter(catalog, req.Preferences)
	if filtered.Empty() {
		common.LogInfo("過濾後沒有符合的食譜",
			zap.Uint32("mask", uint32(req.Preferences.Mask())),
		)
		return Result{Summary: EmptyCatalogSummary}
	}

	maxSlots := req.MaxSlots
	if maxSlots < 1 {
		maxSlots = 1
	}

	slots := AssignTargets(
		PlanSlots(filtered, req.TargetCalories, req.TargetProtein, maxSlots),
		req.TargetCalories, req.TargetProtein,
	)

	selector := NewSelector(e.ladder, req.Tolerance, rnd)
	used := make(map[int64]bool, len(slots))
	selections := make([]Selection, 0, len(slots))
	var skipped []string
	consumedCal, consumedProtein := 0, 0

	for i, slot := range slots {
		if req.Mode == TargetAdaptive {
			left := len(slots) - i
			slot.CalorieTarget = adaptiveTarget(req.TargetCalories, consumedCal, left)
			slot.ProteinTarget = adaptiveTarget(req.TargetProtein, consumedProtein, left)
			slots[i] = slot
		}

		pool := filtered.recipes
		if !req.AllowRepeats && len(used) > 0 {
			pool = withoutUsed(pool, used)
		}

		sel, ok := selector.Select(pool, slot)
		if !ok {
			common.LogWarn("時段沒有可用食譜，略過",
				zap.String("slot", slot.Name),
				zap.Int("pool", len(pool)),
			)
			skipped = append(skipped, slot.Name)
			continue
		}

		common.LogDebug("時段已選擇食譜",
			zap.String("slot", slot.Name),
			zap.Int64("recipe_id", sel.Recipe.ID),
			zap.String("strategy", sel.Strategy),
			zap.Int("candidates", sel.Candidates),
		)

		selections = append(selections, sel)
		used[sel.Recipe.ID] = true
		consumedCal += roundInt(sel.Recipe.Calories)
		consumedProtein += roundInt(sel.Recipe.Protein)
	}

	plan, summary := Assemble(selections)
	return Result{
		Plan:     plan,
		Summary:  summary,
		Filtered: filtered.Len(),
		Slots:    slots,
		Skipped:  skipped,
	}
}

// GeneratePlan 以固定目標、允許重複的預設行為產生計畫
func GeneratePlan(catalog *Catalog, prefs PreferenceSet, targetCalories, targetProtein, tolerance float64, maxSlots int, rnd Rand) (*Plan, string) {
	res := NewEngine().Generate(catalog, Request{
		Preferences:    prefs,
		TargetCalories: targetCalories,
		TargetProtein:  targetProtein,
		Tolerance:      tolerance,
		MaxSlots:       maxSlots,
		Mode:           TargetFixed,
		AllowRepeats:   true,
	}, rnd)
	return res.Plan, res.Summary
}

func withoutUsed(pool []*Recipe, used map[int64]bool) []*Recipe {
	out := make([]*Recipe, 0, len(pool))
	for _, r := range pool {
		if !used[r.ID] {
			out = append(out, r)
		}
	}
	return out
}
