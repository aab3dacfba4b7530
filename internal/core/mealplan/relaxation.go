package mealplan

// Target 一個時段的搜尋目標與容許範圍
type Target struct {
	Slot      Slot
	Tolerance float64
}

// Window 回傳 [目標*(1-t), 目標*(1+t)]，上下界依大小排序
func window(target, tolerance float64) (lo, hi float64) {
	lo, hi = target*(1-tolerance), target*(1+tolerance)
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi
}

// CalorieWindow 熱量容許範圍
func (t Target) CalorieWindow() (lo, hi float64) {
	return window(t.Slot.CalorieTarget, t.Tolerance)
}

// ProteinWindow 蛋白質容許範圍
func (t Target) ProteinWindow() (lo, hi float64) {
	return window(t.Slot.ProteinTarget, t.Tolerance)
}

// Contains 食譜的熱量與蛋白質都落在範圍內
func (t Target) Contains(r *Recipe) bool {
	calLo, calHi := t.CalorieWindow()
	protLo, protHi := t.ProteinWindow()
	return r.Calories >= calLo && r.Calories <= calHi &&
		r.Protein >= protLo && r.Protein <= protHi
}

// Strategy 候選搜尋的一個放寬層級。Find 為純函式，不可修改 pool
type Strategy struct {
	Name string
	Find func(pool []*Recipe, target Target) []*Recipe
}

// 放寬層級名稱
const (
	StrategyCategoryWindow = "category_window"
	StrategyWindow         = "window"
	StrategyAnyRecipe      = "any_recipe"
)

// DefaultLadder 依序嘗試：類別+範圍、僅範圍、任意食譜
var DefaultLadder = []Strategy{
	{Name: StrategyCategoryWindow, Find: FindInCategoryWindow},
	{Name: StrategyWindow, Find: FindInWindow},
	{Name: StrategyAnyRecipe, Find: FindAny},
}

// FindInCategoryWindow 落在範圍內且 MealCat 與時段類別相符；編號時段沒有類別，回傳空
func FindInCategoryWindow(pool []*Recipe, target Target) []*Recipe {
	category, ok := target.Slot.Category.MealCategory()
	if !ok {
		return nil
	}
	var out []*Recipe
	for _, r := range pool {
		if r.MealCategory == category && target.Contains(r) {
			out = append(out, r)
		}
	}
	return out
}

// FindInWindow 只檢查熱量與蛋白質範圍
func FindInWindow(pool []*Recipe, target Target) []*Recipe {
	var out []*Recipe
	for _, r := range pool {
		if target.Contains(r) {
			out = append(out, r)
		}
	}
	return out
}

// FindAny 不看範圍，整個過濾後目錄都是候選
func FindAny(pool []*Recipe, _ Target) []*Recipe {
	out := make([]*Recipe, len(pool))
	copy(out, pool)
	return out
}
