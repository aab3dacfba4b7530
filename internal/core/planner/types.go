package planner

import (
	"time"

	"meal-planner/internal/core/mealplan"
)

// PreferencesInput 請求中的飲食偏好
type PreferencesInput struct {
	Vegetarian  bool   `json:"vegetarian"`
	Vegan       bool   `json:"vegan"`
	Pescatarian bool   `json:"pescatarian"`
	Easy        bool   `json:"easy"`
	GlutenFree  bool   `json:"gluten_free"`
	DairyFree   bool   `json:"dairy_free"`
	Calories    string `json:"calories" binding:"omitempty,oneof=low moderate high l m h"`
	Protein     string `json:"protein" binding:"omitempty,oneof=low moderate high l m h"`
	PrepTime    string `json:"prep_time" binding:"omitempty,oneof=quick standard long q s l"`
}

// ToPreferenceSet 轉為引擎使用的偏好
func (p PreferencesInput) ToPreferenceSet() (mealplan.PreferenceSet, error) {
	calories, err := mealplan.ParseLevel(p.Calories)
	if err != nil {
		return mealplan.PreferenceSet{}, err
	}
	protein, err := mealplan.ParseLevel(p.Protein)
	if err != nil {
		return mealplan.PreferenceSet{}, err
	}
	prep, err := mealplan.ParsePrepTime(p.PrepTime)
	if err != nil {
		return mealplan.PreferenceSet{}, err
	}
	return mealplan.PreferenceSet{
		Vegetarian:  p.Vegetarian,
		Vegan:       p.Vegan,
		Pescatarian: p.Pescatarian,
		Easy:        p.Easy,
		GlutenFree:  p.GlutenFree,
		DairyFree:   p.DairyFree,
		Calories:    calories,
		Protein:     protein,
		PrepTime:    prep,
	}, nil
}

// PlanRequest 產生計畫的請求，未填的數值使用設定中的預設
type PlanRequest struct {
	Preferences    PreferencesInput `json:"preferences"`
	TargetCalories float64          `json:"target_calories" binding:"omitempty,min=1000,max=5000"`
	TargetProtein  float64          `json:"target_protein" binding:"omitempty,min=50,max=300"`
	Tolerance      float64          `json:"tolerance" binding:"omitempty,gt=0,lt=1"`
	MaxSlots       int              `json:"max_slots" binding:"omitempty,min=3,max=7"`
	TargetMode     string           `json:"target_mode" binding:"omitempty,oneof=fixed adaptive"`
	AllowRepeats   *bool            `json:"allow_repeats"`
	Seed           *int64           `json:"seed"`
}

// BatchRequest 批次請求
type BatchRequest struct {
	Requests []PlanRequest `json:"requests" binding:"required,min=1,dive"`
}

// PlanResponse 產生計畫的結果。Plan 為 nil 時 Summary 說明原因
type PlanResponse struct {
	ID          string          `json:"id"`
	Plan        *mealplan.Plan  `json:"plan"`
	Summary     string          `json:"summary"`
	Filtered    int             `json:"filtered"`
	Slots       []mealplan.Slot `json:"slots,omitempty"`
	Skipped     []string        `json:"skipped,omitempty"`
	Seed        int64           `json:"seed"`
	CacheHit    bool            `json:"cache_hit"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// BatchResponse 批次結果，順序與請求相同
type BatchResponse struct {
	Results []*PlanResponse `json:"results"`
}

// PreviewResponse 偏好過濾後各餐別的食譜數量
type PreviewResponse struct {
	Matching       int            `json:"matching"`
	ByMealCategory map[string]int `json:"by_meal_category"`
}

// resolved 套用預設值後的請求，也是快取鍵的內容
type resolved struct {
	Preferences    mealplan.PreferenceSet `json:"preferences"`
	TargetCalories float64                `json:"target_calories"`
	TargetProtein  float64                `json:"target_protein"`
	Tolerance      float64                `json:"tolerance"`
	MaxSlots       int                    `json:"max_slots"`
	Mode           mealplan.TargetMode    `json:"mode"`
	AllowRepeats   bool                   `json:"allow_repeats"`
	Seed           int64                  `json:"seed"`
	Catalog        string                 `json:"catalog"`
}

func (r resolved) engineRequest() mealplan.Request {
	return mealplan.Request{
		Preferences:    r.Preferences,
		TargetCalories: r.TargetCalories,
		TargetProtein:  r.TargetProtein,
		Tolerance:      r.Tolerance,
		MaxSlots:       r.MaxSlots,
		Mode:           r.Mode,
		AllowRepeats:   r.AllowRepeats,
	}
}
