package mealplan

func ptr[T any](v T) *T { return &v }

// recipe 測試用食譜
func recipe(id int64, calories, protein float64, rating *float64, category MealCategory, flags Flags) *Recipe {
	return &Recipe{
		ID:           id,
		Name:         "recipe",
		MealCategory: category,
		Calories:     calories,
		Protein:      protein,
		Rating:       rating,
		Flags:        flags,
	}
}

// fixedRand 永遠回傳同一個索引（超出範圍時取最後一個）
type fixedRand int

func (f fixedRand) Intn(n int) int {
	if int(f) >= n {
		return n - 1
	}
	return int(f)
}

// spreadCatalog 每個 MealCat 各 11 筆，熱量 200..1200，蛋白質為熱量的 1/20
func spreadCatalog() *Catalog {
	var recipes []*Recipe
	id := int64(1)
	for _, cat := range MealCategories {
		for cal := 200.0; cal <= 1200; cal += 100 {
			recipes = append(recipes, recipe(id, cal, cal/20, ptr(3.0+float64(id%5)/2), cat, 0))
			id++
		}
	}
	return NewCatalog(recipes)
}
