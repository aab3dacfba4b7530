package mealplan

import (
	"fmt"
	"math"
)

const (
	// EmptyCatalogSummary 過濾後沒有任何食譜
	EmptyCatalogSummary = "no recipes match your current filters"
	// NoSelectionSummary 每個時段都沒有選到食譜
	NoSelectionSummary = "no recipes could be selected for any meal slot"
)

// PlannedMeal 計畫中的一餐
type PlannedMeal struct {
	Slot          string       `json:"slot"`
	Category      SlotCategory `json:"category"`
	Recipe        *Recipe      `json:"recipe"`
	Calories      int          `json:"calories"`
	Protein       int          `json:"protein"`
	CalorieTarget float64      `json:"calorie_target"`
	ProteinTarget float64      `json:"protein_target"`
	Strategy      string       `json:"strategy"`
	Candidates    int          `json:"candidates"`
}

// Plan 一天的餐點計畫，Meals 依時段順序排列
type Plan struct {
	Meals         []PlannedMeal `json:"meals"`
	TotalCalories int           `json:"total_calories"`
	TotalProtein  int           `json:"total_protein"`
}

// Meal 依時段名稱查詢
func (p *Plan) Meal(slot string) (PlannedMeal, bool) {
	if p == nil {
		return PlannedMeal{}, false
	}
	for _, m := range p.Meals {
		if m.Slot == slot {
			return m, true
		}
	}
	return PlannedMeal{}, false
}

// Summary 人看得懂的總結
func (p *Plan) Summary() string {
	if p == nil {
		return NoSelectionSummary
	}
	return fmt.Sprintf("Total: %d calories, %dg protein", p.TotalCalories, p.TotalProtein)
}

// Assemble 依序累加四捨五入後的營養值。沒有任何選擇時回傳 nil
func Assemble(selections []Selection) (*Plan, string) {
	if len(selections) == 0 {
		return nil, NoSelectionSummary
	}

	plan := &Plan{Meals: make([]PlannedMeal, 0, len(selections))}
	for _, sel := range selections {
		meal := PlannedMeal{
			Slot:          sel.Slot.Name,
			Category:      sel.Slot.Category,
			Recipe:        sel.Recipe,
			Calories:      roundInt(sel.Recipe.Calories),
			Protein:       roundInt(sel.Recipe.Protein),
			CalorieTarget: sel.Slot.CalorieTarget,
			ProteinTarget: sel.Slot.ProteinTarget,
			Strategy:      sel.Strategy,
			Candidates:    sel.Candidates,
		}
		plan.Meals = append(plan.Meals, meal)
		plan.TotalCalories += meal.Calories
		plan.TotalProtein += meal.Protein
	}
	return plan, plan.Summary()
}

func roundInt(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v))
}
