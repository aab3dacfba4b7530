package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"meal-planner/internal/core/mealplan"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Store 以 SQLite 保存匯入後的食譜目錄
type Store struct {
	db *sql.DB
}

// OpenStore 開啟資料庫並套用 schema
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}
	// SQLite 只允許單一寫入者
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply catalog schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close 關閉資料庫
func (s *Store) Close() error {
	return s.db.Close()
}

const upsertRecipeSQL = `
INSERT INTO recipes (
    id, name, description, category, meal_category, rating, review_count,
    cook_time, prep_time, total_time, yield, instructions, ingredient_quantities,
    ingredient_parts, keywords, calories, protein, fat, saturated_fat,
    carbohydrate, sodium, fiber, sugar, flags
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    description = excluded.description,
    category = excluded.category,
    meal_category = excluded.meal_category,
    rating = excluded.rating,
    review_count = excluded.review_count,
    cook_time = excluded.cook_time,
    prep_time = excluded.prep_time,
    total_time = excluded.total_time,
    yield = excluded.yield,
    instructions = excluded.instructions,
    ingredient_quantities = excluded.ingredient_quantities,
    ingredient_parts = excluded.ingredient_parts,
    keywords = excluded.keywords,
    calories = excluded.calories,
    protein = excluded.protein,
    fat = excluded.fat,
    saturated_fat = excluded.saturated_fat,
    carbohydrate = excluded.carbohydrate,
    sodium = excluded.sodium,
    fiber = excluded.fiber,
    sugar = excluded.sugar,
    flags = excluded.flags`

// Import 在單一交易中寫入整份目錄，已存在的 ID 會被覆寫
func (s *Store) Import(ctx context.Context, catalog *mealplan.Catalog) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertRecipeSQL)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare import: %w", err)
	}
	defer stmt.Close()

	count := 0
	for _, r := range catalog.Recipes() {
		var rating, reviews interface{}
		if r.HasRating() {
			rating = *r.Rating
		}
		if r.ReviewCount != nil {
			reviews = *r.ReviewCount
		}
		if _, err := stmt.ExecContext(ctx,
			r.ID, r.Name, r.Description, r.Category, string(r.MealCategory), rating, reviews,
			r.CookTime, r.PrepTime, r.TotalTime, r.Yield, r.Instructions, r.IngredientQuantities,
			r.IngredientParts, r.Keywords, r.Calories, r.Protein, r.Fat, r.SaturatedFat,
			r.Carbohydrate, r.Sodium, r.Fiber, r.Sugar, int64(r.Flags),
		); err != nil {
			return count, fmt.Errorf("failed to import recipe %d: %w", r.ID, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return count, nil
}

// Load 依 ID 順序讀出整份目錄
func (s *Store) Load(ctx context.Context) (*mealplan.Catalog, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, description, category, meal_category, rating, review_count,
       cook_time, prep_time, total_time, yield, instructions, ingredient_quantities,
       ingredient_parts, keywords, calories, protein, fat, saturated_fat,
       carbohydrate, sodium, fiber, sugar, flags
FROM recipes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipes: %w", err)
	}
	defer rows.Close()

	var recipes []*mealplan.Recipe
	for rows.Next() {
		var (
			r        mealplan.Recipe
			mealCat  string
			rating   sql.NullFloat64
			reviews  sql.NullInt64
			rawFlags int64
		)
		if err := rows.Scan(
			&r.ID, &r.Name, &r.Description, &r.Category, &mealCat, &rating, &reviews,
			&r.CookTime, &r.PrepTime, &r.TotalTime, &r.Yield, &r.Instructions, &r.IngredientQuantities,
			&r.IngredientParts, &r.Keywords, &r.Calories, &r.Protein, &r.Fat, &r.SaturatedFat,
			&r.Carbohydrate, &r.Sodium, &r.Fiber, &r.Sugar, &rawFlags,
		); err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}

		r.MealCategory = normalizeMealCategory(mealCat)
		r.Flags = mealplan.Flags(rawFlags)
		if rating.Valid {
			v := rating.Float64
			r.Rating = &v
		}
		if reviews.Valid {
			n := int(reviews.Int64)
			r.ReviewCount = &n
		}
		recipes = append(recipes, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipes: %w", err)
	}
	return mealplan.NewCatalog(recipes), nil
}
