package mealplan

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePlanSingleRecipeFallsBack(t *testing.T) {
	catalog := NewCatalog([]*Recipe{
		recipe(1, 500, 30, ptr(4.5), MealCategoryBreakfast, 0),
	})

	plan, summary := GeneratePlan(catalog, PreferenceSet{}, 2400, 120, 0.2, 3, rand.New(rand.NewSource(1)))
	require.NotNil(t, plan)

	require.Len(t, plan.Meals, 3)
	for i, name := range []string{"Breakfast", "Lunch", "Dinner"} {
		meal := plan.Meals[i]
		assert.Equal(t, name, meal.Slot)
		assert.Equal(t, int64(1), meal.Recipe.ID)
		assert.Equal(t, StrategyAnyRecipe, meal.Strategy)
	}
	assert.Equal(t, 1500, plan.TotalCalories)
	assert.Equal(t, 90, plan.TotalProtein)
	assert.Equal(t, "Total: 1500 calories, 90g protein", summary)
}

func TestGeneratePlanEmptyAfterFilter(t *testing.T) {
	catalog := NewCatalog([]*Recipe{
		recipe(1, 500, 30, nil, MealCategoryBreakfast, FlagVegetarian),
		recipe(2, 700, 40, nil, MealCategoryLunchDinner, 0),
	})

	plan, summary := GeneratePlan(catalog, PreferenceSet{Vegan: true}, 2400, 120, 0.2, 3, fixedRand(0))
	assert.Nil(t, plan)
	assert.Contains(t, summary, "no recipes")
}

func TestGeneratePlanRespectsWindows(t *testing.T) {
	catalog := spreadCatalog()
	engine := NewEngine()

	targets := []struct{ calories, protein float64 }{
		{2000, 100}, {2400, 120}, {2800, 140}, {1600, 80},
	}

	for seed := int64(0); seed < 20; seed++ {
		for _, tt := range targets {
			req := Request{
				TargetCalories: tt.calories,
				TargetProtein:  tt.protein,
				Tolerance:      0.2,
				MaxSlots:       6,
				AllowRepeats:   true,
			}
			res := engine.Generate(catalog, req, rand.New(rand.NewSource(seed)))
			require.NotNil(t, res.Plan)
			require.Len(t, res.Plan.Meals, len(res.Slots))

			pool := catalog.Recipes()
			for i, slot := range res.Slots {
				target := Target{Slot: slot, Tolerance: req.Tolerance}
				if len(FindInCategoryWindow(pool, target)) == 0 {
					continue
				}
				meal := res.Plan.Meals[i]
				category, _ := slot.Category.MealCategory()
				assert.Equal(t, StrategyCategoryWindow, meal.Strategy, slot.Name)
				assert.True(t, target.Contains(meal.Recipe), "slot %s picked %d", slot.Name, meal.Recipe.ID)
				assert.Equal(t, category, meal.Recipe.MealCategory)
			}
		}
	}
}

func TestPlanTotalsMatchMeals(t *testing.T) {
	catalog := spreadCatalog()
	for seed := int64(0); seed < 10; seed++ {
		plan, _ := GeneratePlan(catalog, PreferenceSet{}, 2300, 110, 0.15, 5, rand.New(rand.NewSource(seed)))
		require.NotNil(t, plan)

		calories, protein := 0, 0
		for _, m := range plan.Meals {
			calories += m.Calories
			protein += m.Protein
		}
		assert.Equal(t, calories, plan.TotalCalories)
		assert.Equal(t, protein, plan.TotalProtein)
	}
}

func TestGenerateAdaptiveTargets(t *testing.T) {
	catalog := NewCatalog([]*Recipe{
		recipe(1, 1000, 50, nil, MealCategoryBreakfast, 0),
	})

	res := NewEngine().Generate(catalog, Request{
		TargetCalories: 2400,
		TargetProtein:  120,
		Tolerance:      0.2,
		MaxSlots:       3,
		Mode:           TargetAdaptive,
		AllowRepeats:   true,
	}, fixedRand(0))
	require.NotNil(t, res.Plan)
	require.Len(t, res.Slots, 3)

	assert.InDelta(t, 800, res.Slots[0].CalorieTarget, 1e-9)
	assert.InDelta(t, 700, res.Slots[1].CalorieTarget, 1e-9)
	assert.InDelta(t, 400, res.Slots[2].CalorieTarget, 1e-9)
	assert.InDelta(t, 40, res.Slots[0].ProteinTarget, 1e-9)
	assert.InDelta(t, 35, res.Slots[1].ProteinTarget, 1e-9)
	assert.InDelta(t, 20, res.Slots[2].ProteinTarget, 1e-9)

	meal, ok := res.Plan.Meal("Lunch")
	require.True(t, ok)
	assert.InDelta(t, 700, meal.CalorieTarget, 1e-9)
}

func TestGenerateWithoutRepeats(t *testing.T) {
	catalog := NewCatalog([]*Recipe{
		recipe(1, 500, 30, ptr(4.0), MealCategoryBreakfast, 0),
		recipe(2, 500, 30, ptr(3.0), MealCategoryLunchDinner, 0),
	})

	res := NewEngine().Generate(catalog, Request{
		TargetCalories: 2400,
		TargetProtein:  120,
		Tolerance:      0.2,
		MaxSlots:       3,
		AllowRepeats:   false,
	}, fixedRand(0))
	require.NotNil(t, res.Plan)

	require.Len(t, res.Plan.Meals, 2)
	assert.NotEqual(t, res.Plan.Meals[0].Recipe.ID, res.Plan.Meals[1].Recipe.ID)
	assert.Equal(t, []string{"Dinner"}, res.Skipped)
	assert.Equal(t, 1000, res.Plan.TotalCalories)
}

func TestGenerateWithRepeatsReusesBestRecipe(t *testing.T) {
	catalog := NewCatalog([]*Recipe{
		recipe(1, 500, 30, ptr(4.0), MealCategoryBreakfast, 0),
		recipe(2, 500, 30, ptr(3.0), MealCategoryLunchDinner, 0),
	})

	plan, _ := GeneratePlan(catalog, PreferenceSet{}, 2400, 120, 0.2, 3, fixedRand(0))
	require.NotNil(t, plan)
	for _, m := range plan.Meals {
		assert.Equal(t, int64(1), m.Recipe.ID)
	}
}

func TestGenerateOutOfRangeInputs(t *testing.T) {
	catalog := spreadCatalog()

	plan, _ := GeneratePlan(catalog, PreferenceSet{}, 2400, 120, 0.2, 0, fixedRand(0))
	require.NotNil(t, plan)
	require.Len(t, plan.Meals, 1)
	assert.Equal(t, "Breakfast", plan.Meals[0].Slot)

	plan, _ = GeneratePlan(catalog, PreferenceSet{}, -500, -20, 1.5, 4, fixedRand(0))
	require.NotNil(t, plan)
	assert.Len(t, plan.Meals, 2)
}

func TestGenerateNilCatalog(t *testing.T) {
	plan, summary := GeneratePlan(nil, PreferenceSet{}, 2400, 120, 0.2, 3, fixedRand(0))
	assert.Nil(t, plan)
	assert.Equal(t, EmptyCatalogSummary, summary)
}

func TestGeneratePlanNilRand(t *testing.T) {
	catalog := NewCatalog([]*Recipe{
		recipe(1, 500, 30, nil, MealCategoryBreakfast, 0),
		recipe(2, 500, 30, nil, MealCategoryBreakfast, 0),
	})

	var (
		plan    *Plan
		summary string
	)
	require.NotPanics(t, func() {
		plan, summary = GeneratePlan(catalog, PreferenceSet{}, 2400, 120, 0.2, 3, nil)
	})
	require.NotNil(t, plan)
	assert.Len(t, plan.Meals, 3)
	assert.Equal(t, plan.Summary(), summary)
}

func TestGenerateCapsHugeMaxSlots(t *testing.T) {
	res := NewEngine().Generate(spreadCatalog(), Request{
		TargetCalories: 1e12,
		TargetProtein:  1e10,
		Tolerance:      0.2,
		MaxSlots:       1 << 30,
		Mode:           TargetFixed,
		AllowRepeats:   true,
	}, fixedRand(0))

	assert.Len(t, res.Slots, MaxSlotCount)
	require.NotNil(t, res.Plan)
	assert.Len(t, res.Plan.Meals, MaxSlotCount)
}

func TestAssembleNoSelections(t *testing.T) {
	plan, summary := Assemble(nil)
	assert.Nil(t, plan)
	assert.Equal(t, NoSelectionSummary, summary)
}

func TestParseTargetMode(t *testing.T) {
	mode, err := ParseTargetMode("")
	require.NoError(t, err)
	assert.Equal(t, TargetFixed, mode)

	mode, err = ParseTargetMode("Adaptive")
	require.NoError(t, err)
	assert.Equal(t, TargetAdaptive, mode)

	_, err = ParseTargetMode("greedy")
	assert.Error(t, err)
}

func TestComputeStats(t *testing.T) {
	catalog := NewCatalog([]*Recipe{
		recipe(1, 300, 10, ptr(4.0), MealCategoryBreakfast, FlagVegan|FlagQuick),
		recipe(2, 500, 30, nil, MealCategoryLunchDinner, FlagQuick),
	})

	stats := ComputeStats(catalog)
	assert.Equal(t, 2, stats.TotalRecipes)
	assert.Equal(t, 1, stats.RatedRecipes)
	assert.Equal(t, 400.0, stats.AvgCalories)
	assert.Equal(t, 20.0, stats.AvgProtein)
	assert.Equal(t, 2, stats.FeatureCounts["Quick"])
	assert.Equal(t, 1, stats.FeatureCounts["Vegan"])
	assert.Equal(t, 0, stats.FeatureCounts["HighProtein"])
	assert.Equal(t, 1, stats.MealCategoryCounts["Breakfast"])
	assert.Equal(t, 0, stats.MealCategoryCounts["Snacks"])

	empty := ComputeStats(NewCatalog(nil))
	assert.Equal(t, 0, empty.TotalRecipes)
	assert.Zero(t, empty.AvgCalories)
}
