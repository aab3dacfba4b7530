package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/core/mealplan"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"
)

const sampleHeader = "RecipeId,Name,RecipeCategory,MealCat,AggregatedRating,ReviewCount,RecipeInstructions,Calories,ProteinContent,FatContent," +
	"Easy,Vegan,Vegetarian,Pescatarian,Quick,StandardPrepTime,LongPrepTime,LowCalorie,ModerateCalorie,HighCalorie," +
	"LowProtein,ModerateProtein,HighProtein,GlutenFree,DairyFree"

const sampleCSV = sampleHeader + "\n" +
	`38,Low-Fat Berry Blue Frozen Dessert,Frozen Desserts,Snacks,4.5,4,"Toss blueberries, sugar.` + "\n" + `Freeze.",170.9,4.3,2.5,1,0,1,0,0,1,0,1,0,0,1,0,0,0,1` + "\n" +
	"39,Biryani,Chicken Breast,Lunch/Dinner,3.0,1.0,Soak rice.,1110.7,63.4,58.8,0,0,0,0,0,0,1,0,0,1,0,0,1,0,0\n" +
	"40,Best Lemonade,Beverages,snacks,,,Mix.,311.1,0.2,0.2,1,1,1,1,1,0,0,0,1,0,1,0,0,1,1\n" +
	"41,Broken Row,Breakfast,Breakfast,4.0,2,Cook.,not-a-number,10,1,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0\n" +
	"42,Too Few Fields,Breakfast\n"

func TestParseCSV(t *testing.T) {
	catalog, skipped, err := ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Equal(t, 3, catalog.Len())

	dessert, ok := catalog.Get(38)
	require.True(t, ok)
	assert.Equal(t, "Low-Fat Berry Blue Frozen Dessert", dessert.Name)
	assert.Equal(t, mealplan.MealCategorySnacks, dessert.MealCategory)
	assert.Equal(t, "Toss blueberries, sugar.\nFreeze.", dessert.Instructions)
	assert.InDelta(t, 170.9, dessert.Calories, 1e-9)
	assert.InDelta(t, 4.3, dessert.Protein, 1e-9)
	require.NotNil(t, dessert.Rating)
	assert.Equal(t, 4.5, *dessert.Rating)
	require.NotNil(t, dessert.ReviewCount)
	assert.Equal(t, 4, *dessert.ReviewCount)
	assert.True(t, dessert.Flags.Has(mealplan.FlagEasy|mealplan.FlagVegetarian|mealplan.FlagLowCalorie|mealplan.FlagLowProtein|mealplan.FlagDairyFree))
	assert.False(t, dessert.Flags.Has(mealplan.FlagVegan))

	biryani, _ := catalog.Get(39)
	assert.Equal(t, mealplan.MealCategoryLunchDinner, biryani.MealCategory)
	assert.True(t, biryani.Flags.Has(mealplan.FlagHighProtein|mealplan.FlagLongPrepTime))

	lemonade, _ := catalog.Get(40)
	assert.Equal(t, mealplan.MealCategorySnacks, lemonade.MealCategory)
	assert.Nil(t, lemonade.Rating)
	assert.Nil(t, lemonade.ReviewCount)
}

func TestParseCSVNonFiniteValues(t *testing.T) {
	flags := ",0,0,0,0,0,0,0,0,0,0,0,0,0,0,0\n"
	data := sampleHeader + "\n" +
		"50,Endless Cake,Desserts,Snacks,4.0,2,Bake.,Infinity,5,1" + flags +
		"51,Bottomless Soup,Soups,Lunch/Dinner,4.0,2,Simmer.,300,-Inf,1" + flags +
		"52,Plain Toast,Breakfast,Breakfast,+Inf,Inf,Toast.,150,5,+Infinity" + flags

	catalog, skipped, err := ParseCSV(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Equal(t, 1, catalog.Len())

	toast, ok := catalog.Get(52)
	require.True(t, ok)
	assert.Nil(t, toast.Rating)
	assert.Nil(t, toast.ReviewCount)
	assert.Zero(t, toast.Fat)

	_, err = json.Marshal(catalog.Recipes())
	assert.NoError(t, err)
}

func TestParseCSVMissingColumns(t *testing.T) {
	_, _, err := ParseCSV(strings.NewReader("RecipeId,Name,Calories\n1,Soup,100\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ProteinContent")
	assert.Contains(t, err.Error(), "Vegan")
}

func TestParseCSVEmpty(t *testing.T) {
	_, _, err := ParseCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestStoreRoundTrip(t *testing.T) {
	catalog, _, err := ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "catalog.db")
	store, err := OpenStore(path)
	require.NoError(t, err)

	ctx := context.Background()
	n, err := store.Import(ctx, catalog)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// 重複匯入不應產生重複資料
	_, err = store.Import(ctx, catalog)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	loaded, err := LoadSQLite(ctx, path)
	require.NoError(t, err)
	require.Equal(t, catalog.Len(), loaded.Len())

	for _, want := range catalog.Recipes() {
		got, ok := loaded.Get(want.ID)
		require.True(t, ok, want.ID)
		assert.Equal(t, want, got)
	}
}

func TestLoadSQLiteMissingFile(t *testing.T) {
	_, err := LoadSQLite(context.Background(), filepath.Join(t.TempDir(), "missing.db"))
	assert.Error(t, err)
}

func TestRemoteFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/catalog.csv" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	fetcher := NewRemoteFetcher(0)

	catalog, err := fetcher.Fetch(context.Background(), srv.URL+"/catalog.csv")
	require.NoError(t, err)
	assert.Equal(t, 3, catalog.Len())

	_, err = fetcher.Fetch(context.Background(), srv.URL+"/missing.csv")
	assert.Error(t, err)
}

func TestLoadDispatch(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "recipes.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(sampleCSV), 0o644))

	catalog, source, err := Load(context.Background(), config.CatalogConfig{Path: csvPath})
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, source.Kind)
	assert.Equal(t, 3, source.Recipes)
	assert.Equal(t, 3, catalog.Len())

	_, _, err = Load(context.Background(), config.CatalogConfig{Path: filepath.Join(dir, "nope.csv")})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrCatalogLoadFailed)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatSQLite, DetectFormat("data/catalog.db", ""))
	assert.Equal(t, FormatSQLite, DetectFormat("data/catalog.SQLITE", ""))
	assert.Equal(t, FormatCSV, DetectFormat("data/recipes.csv", ""))
	assert.Equal(t, FormatCSV, DetectFormat("data/catalog.db", FormatCSV))
}
