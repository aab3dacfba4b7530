package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"meal-planner/internal/core/mealplan"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// 匯出檔的欄位名稱
const (
	colRecipeID             = "RecipeId"
	colName                 = "Name"
	colDescription          = "Description"
	colCategory             = "RecipeCategory"
	colMealCat              = "MealCat"
	colRating               = "AggregatedRating"
	colReviewCount          = "ReviewCount"
	colCookTime             = "CookTime"
	colPrepTime             = "PrepTime"
	colTotalTime            = "TotalTime"
	colYield                = "RecipeYield"
	colInstructions         = "RecipeInstructions"
	colIngredientQuantities = "RecipeIngredientQuantities"
	colCalories             = "Calories"
	colProtein              = "ProteinContent"
	colFat                  = "FatContent"
	colSaturatedFat         = "SaturatedFatContent"
	colCarbohydrate         = "CarbohydrateContent"
	colSodium               = "SodiumContent"
	colFiber                = "FiberContent"
	colSugar                = "SugarContent"
	colKeywords             = "Keywords"
	colIngredientParts      = "RecipeIngredientParts"
)

// RequiredColumns 缺少任一欄位時整份檔案視為無效
func RequiredColumns() []string {
	cols := []string{colRecipeID, colName, colMealCat, colCalories, colProtein}
	for _, fc := range mealplan.FlagColumns {
		cols = append(cols, fc.Column)
	}
	return cols
}

// ParseCSV 依表頭名稱解析匯出的食譜 CSV，回傳目錄與略過的列數
func ParseCSV(r io.Reader) (*mealplan.Catalog, int, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, fmt.Errorf("catalog csv is empty")
		}
		return nil, 0, fmt.Errorf("failed to read csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}

	var missing []string
	for _, col := range RequiredColumns() {
		if _, ok := columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, 0, fmt.Errorf("catalog csv missing columns: %s", strings.Join(missing, ", "))
	}

	var (
		recipes []*mealplan.Recipe
		skipped int
		line    = 1
	)
	for {
		record, err := reader.Read()
		line++
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) && errors.Is(parseErr.Err, csv.ErrFieldCount) {
				skipped++
				common.LogDebug("略過欄位數不符的資料列", zap.Int("line", line))
				continue
			}
			return nil, skipped, fmt.Errorf("failed to read csv line %d: %w", line, err)
		}

		recipe, err := parseRow(rowReader{record: record, columns: columns})
		if err != nil {
			skipped++
			common.LogDebug("略過無法解析的資料列", zap.Int("line", line), zap.Error(err))
			continue
		}
		recipes = append(recipes, recipe)
	}

	if skipped > 0 {
		common.LogWarn("部分食譜資料列無法解析", zap.Int("skipped", skipped), zap.Int("loaded", len(recipes)))
	}
	return mealplan.NewCatalog(recipes), skipped, nil
}

type rowReader struct {
	record  []string
	columns map[string]int
}

func (r rowReader) str(col string) string {
	i, ok := r.columns[col]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

// float 空值、NaN 或無限大回傳 ok=false
func (r rowReader) float(col string) (float64, bool, error) {
	s := r.str(col)
	if s == "" || strings.EqualFold(s, "nan") {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("column %s: %w", col, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, nil
	}
	return v, true, nil
}

func (r rowReader) optionalFloat(col string) float64 {
	v, _, err := r.float(col)
	if err != nil {
		return 0
	}
	return v
}

func (r rowReader) flag(col string) bool {
	s := r.str(col)
	if strings.EqualFold(s, "true") {
		return true
	}
	v, err := strconv.ParseFloat(s, 64)
	return err == nil && v == 1
}

func parseRow(row rowReader) (*mealplan.Recipe, error) {
	id, ok, err := row.float(colRecipeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("missing %s", colRecipeID)
	}

	calories, ok, err := row.float(colCalories)
	if err != nil || !ok {
		return nil, fmt.Errorf("invalid %s", colCalories)
	}
	protein, ok, err := row.float(colProtein)
	if err != nil || !ok {
		return nil, fmt.Errorf("invalid %s", colProtein)
	}

	recipe := &mealplan.Recipe{
		ID:                   int64(id),
		Name:                 row.str(colName),
		Description:          row.str(colDescription),
		Category:             row.str(colCategory),
		MealCategory:         normalizeMealCategory(row.str(colMealCat)),
		CookTime:             row.str(colCookTime),
		PrepTime:             row.str(colPrepTime),
		TotalTime:            row.str(colTotalTime),
		Yield:                row.str(colYield),
		Instructions:         row.str(colInstructions),
		IngredientQuantities: row.str(colIngredientQuantities),
		IngredientParts:      row.str(colIngredientParts),
		Keywords:             row.str(colKeywords),
		Calories:             calories,
		Protein:              protein,
		Fat:                  row.optionalFloat(colFat),
		SaturatedFat:         row.optionalFloat(colSaturatedFat),
		Carbohydrate:         row.optionalFloat(colCarbohydrate),
		Sodium:               row.optionalFloat(colSodium),
		Fiber:                row.optionalFloat(colFiber),
		Sugar:                row.optionalFloat(colSugar),
	}

	if rating, ok, err := row.float(colRating); err == nil && ok {
		recipe.Rating = &rating
	}
	if count, ok, err := row.float(colReviewCount); err == nil && ok {
		n := int(count)
		recipe.ReviewCount = &n
	}

	for _, fc := range mealplan.FlagColumns {
		if row.flag(fc.Column) {
			recipe.Flags |= fc.Flag
		}
	}
	return recipe, nil
}

// normalizeMealCategory 未知或空白的 MealCat 歸為 Lunch/Dinner，與匯出時的預設相同
func normalizeMealCategory(s string) mealplan.MealCategory {
	for _, c := range mealplan.MealCategories {
		if strings.EqualFold(s, string(c)) {
			return c
		}
	}
	return mealplan.MealCategoryLunchDinner
}
