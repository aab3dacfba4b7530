package mealplan

// CatalogStats 目錄統計，對應匯出時產生的 metadata
type CatalogStats struct {
	TotalRecipes       int            `json:"total_recipes"`
	RatedRecipes       int            `json:"rated_recipes"`
	AvgCalories        float64        `json:"avg_calories"`
	AvgProtein         float64        `json:"avg_protein"`
	FeatureCounts      map[string]int `json:"feature_counts"`
	MealCategoryCounts map[string]int `json:"meal_category_counts"`
}

// ComputeStats 計算各旗標與 MealCat 的筆數
func ComputeStats(catalog *Catalog) CatalogStats {
	stats := CatalogStats{
		TotalRecipes:       catalog.Len(),
		FeatureCounts:      make(map[string]int, len(FlagColumns)),
		MealCategoryCounts: CountByMealCategory(catalog),
	}
	for _, fc := range FlagColumns {
		stats.FeatureCounts[fc.Column] = 0
	}
	if catalog.Empty() {
		return stats
	}

	for _, r := range catalog.recipes {
		if r.HasRating() {
			stats.RatedRecipes++
		}
		for _, fc := range FlagColumns {
			if r.Flags.Has(fc.Flag) {
				stats.FeatureCounts[fc.Column]++
			}
		}
	}
	stats.AvgCalories, stats.AvgProtein = catalog.Means()
	stats.AvgCalories = roundTo(stats.AvgCalories, 1)
	stats.AvgProtein = roundTo(stats.AvgProtein, 1)
	return stats
}

// CountByMealCategory 各 MealCat 的食譜數
func CountByMealCategory(catalog *Catalog) map[string]int {
	counts := make(map[string]int, len(MealCategories))
	for _, c := range MealCategories {
		counts[string(c)] = 0
	}
	if catalog == nil {
		return counts
	}
	for _, r := range catalog.recipes {
		counts[string(r.MealCategory)]++
	}
	return counts
}
