package mealplan

import "math"

// Flags 預先計算好的 0/1 特徵欄位，以位元集合保存
type Flags uint32

const (
	FlagEasy Flags = 1 << iota
	FlagVegan
	FlagVegetarian
	FlagPescatarian
	FlagGlutenFree
	FlagDairyFree
	FlagQuick
	FlagStandardPrepTime
	FlagLongPrepTime
	FlagLowCalorie
	FlagModerateCalorie
	FlagHighCalorie
	FlagLowProtein
	FlagModerateProtein
	FlagHighProtein
)

// FlagColumn 旗標與匯出檔欄位名稱的對應
type FlagColumn struct {
	Flag   Flags
	Column string
}

// FlagColumns 依匯出檔欄位順序列出所有旗標
var FlagColumns = []FlagColumn{
	{FlagEasy, "Easy"},
	{FlagVegan, "Vegan"},
	{FlagVegetarian, "Vegetarian"},
	{FlagPescatarian, "Pescatarian"},
	{FlagQuick, "Quick"},
	{FlagStandardPrepTime, "StandardPrepTime"},
	{FlagLongPrepTime, "LongPrepTime"},
	{FlagLowCalorie, "LowCalorie"},
	{FlagModerateCalorie, "ModerateCalorie"},
	{FlagHighCalorie, "HighCalorie"},
	{FlagLowProtein, "LowProtein"},
	{FlagModerateProtein, "ModerateProtein"},
	{FlagHighProtein, "HighProtein"},
	{FlagGlutenFree, "GlutenFree"},
	{FlagDairyFree, "DairyFree"},
}

// Has 是否包含所有指定旗標
func (f Flags) Has(mask Flags) bool {
	return f&mask == mask
}

// MealCategory 粗分類（MealCat 欄位）
type MealCategory string

const (
	MealCategoryBreakfast   MealCategory = "Breakfast"
	MealCategoryLunchDinner MealCategory = "Lunch/Dinner"
	MealCategorySnacks      MealCategory = "Snacks"
)

// MealCategories 所有粗分類
var MealCategories = []MealCategory{MealCategoryBreakfast, MealCategoryLunchDinner, MealCategorySnacks}

// Recipe 食譜目錄中的一筆資料，載入後不可修改
type Recipe struct {
	ID                   int64        `json:"id"`
	Name                 string       `json:"name"`
	Description          string       `json:"description,omitempty"`
	Category             string       `json:"category,omitempty"`
	MealCategory         MealCategory `json:"meal_category"`
	Rating               *float64     `json:"rating,omitempty"`
	ReviewCount          *int         `json:"review_count,omitempty"`
	CookTime             string       `json:"cook_time,omitempty"`
	PrepTime             string       `json:"prep_time,omitempty"`
	TotalTime            string       `json:"total_time,omitempty"`
	Yield                string       `json:"yield,omitempty"`
	Instructions         string       `json:"instructions,omitempty"`
	IngredientQuantities string       `json:"ingredient_quantities,omitempty"`
	IngredientParts      string       `json:"ingredient_parts,omitempty"`
	Keywords             string       `json:"keywords,omitempty"`

	Calories     float64 `json:"calories"`
	Protein      float64 `json:"protein"`
	Fat          float64 `json:"fat"`
	SaturatedFat float64 `json:"saturated_fat"`
	Carbohydrate float64 `json:"carbohydrate"`
	Sodium       float64 `json:"sodium"`
	Fiber        float64 `json:"fiber"`
	Sugar        float64 `json:"sugar"`

	Flags Flags `json:"flags"`
}

// HasRating 評分存在且不是 NaN
func (r *Recipe) HasRating() bool {
	return r.Rating != nil && !math.IsNaN(*r.Rating)
}

// Catalog 食譜目錄。過濾只會產生新的視圖，不修改原資料
type Catalog struct {
	recipes []*Recipe
	index   map[int64]*Recipe
}

// NewCatalog 建立目錄並建立 ID 索引
func NewCatalog(recipes []*Recipe) *Catalog {
	index := make(map[int64]*Recipe, len(recipes))
	for _, r := range recipes {
		index[r.ID] = r
	}
	return &Catalog{recipes: recipes, index: index}
}

// view 共用記錄指標的子集，不建索引
func view(recipes []*Recipe) *Catalog {
	return &Catalog{recipes: recipes}
}

// Len 筆數
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.recipes)
}

// Empty 是否沒有資料
func (c *Catalog) Empty() bool {
	return c.Len() == 0
}

// Recipes 回傳記錄切片的副本
func (c *Catalog) Recipes() []*Recipe {
	if c == nil {
		return nil
	}
	out := make([]*Recipe, len(c.recipes))
	copy(out, c.recipes)
	return out
}

// Get 依 ID 查詢
func (c *Catalog) Get(id int64) (*Recipe, bool) {
	if c == nil {
		return nil, false
	}
	if c.index != nil {
		r, ok := c.index[id]
		return r, ok
	}
	for _, r := range c.recipes {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

// Means 平均熱量與蛋白質，空目錄回傳 NaN
func (c *Catalog) Means() (calories, protein float64) {
	n := c.Len()
	if n == 0 {
		return math.NaN(), math.NaN()
	}
	for _, r := range c.recipes {
		calories += r.Calories
		protein += r.Protein
	}
	return calories / float64(n), protein / float64(n)
}
