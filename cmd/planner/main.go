package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"meal-planner/internal/core/catalog"
	"meal-planner/internal/core/mealplan"
	"meal-planner/internal/core/planner"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	common.InitConsoleLogger(cfg.LogLevel)
	defer common.Sync()

	if err := run(context.Background(), cfg, os.Args[1], os.Args[2:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, command string, args []string, out io.Writer) error {
	switch command {
	case "plan":
		return runPlan(ctx, cfg, args, out)
	case "stats":
		return runStats(ctx, cfg, args, out)
	case "import":
		return runImport(ctx, args, out)
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	default:
		printUsage(out)
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: planner <command> [arguments]")
	fmt.Fprintln(w, "\nCommands:")
	fmt.Fprintln(w, "  plan      Generate a one-day meal plan from the recipe catalog")
	fmt.Fprintln(w, "  stats     Print catalog statistics")
	fmt.Fprintln(w, "  import    Import a catalog CSV into a SQLite database")
}

func loadCatalog(ctx context.Context, cfg config.CatalogConfig, path string) (*mealplan.Catalog, catalog.Source, error) {
	if path != "" {
		cfg.Path = path
		cfg.URL = ""
	}
	return catalog.Load(ctx, cfg)
}

func runPlan(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("plan", flag.ContinueOnError)
	fs.SetOutput(out)

	path := fs.String("catalog", "", "Catalog CSV or SQLite path (defaults to config)")
	calories := fs.Float64("calories", cfg.Planner.TargetCalories, "Daily calorie target")
	protein := fs.Float64("protein", cfg.Planner.TargetProtein, "Daily protein target in grams")
	tolerance := fs.Float64("tolerance", cfg.Planner.Tolerance, "Relative window around each slot target")
	maxSlots := fs.Int("max-slots", cfg.Planner.MaxSlots, "Maximum number of meal slots")
	mode := fs.String("mode", cfg.Planner.TargetMode, "Target mode: fixed or adaptive")
	allowRepeats := fs.Bool("allow-repeats", cfg.Planner.AllowRepeats, "Allow the same recipe in more than one slot")
	seed := fs.Int64("seed", 0, "Random seed for reproducible plans")
	asJSON := fs.Bool("json", false, "Print the plan as JSON")

	var prefs planner.PreferencesInput
	fs.BoolVar(&prefs.Vegetarian, "vegetarian", false, "Only vegetarian recipes")
	fs.BoolVar(&prefs.Vegan, "vegan", false, "Only vegan recipes")
	fs.BoolVar(&prefs.Pescatarian, "pescatarian", false, "Only pescatarian recipes")
	fs.BoolVar(&prefs.Easy, "easy", false, "Only easy recipes")
	fs.BoolVar(&prefs.GlutenFree, "gluten-free", false, "Only gluten-free recipes")
	fs.BoolVar(&prefs.DairyFree, "dairy-free", false, "Only dairy-free recipes")
	fs.StringVar(&prefs.Calories, "calorie-level", "", "Calorie level: low, moderate or high")
	fs.StringVar(&prefs.Protein, "protein-level", "", "Protein level: low, moderate or high")
	fs.StringVar(&prefs.PrepTime, "prep", "", "Prep time: quick, standard or long")

	if err := fs.Parse(args); err != nil {
		return err
	}

	req := planner.PlanRequest{
		Preferences:    prefs,
		TargetCalories: *calories,
		TargetProtein:  *protein,
		Tolerance:      *tolerance,
		MaxSlots:       *maxSlots,
		TargetMode:     *mode,
		AllowRepeats:   allowRepeats,
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			req.Seed = seed
		}
	})

	cat, source, err := loadCatalog(ctx, cfg.Catalog, *path)
	if err != nil {
		return err
	}

	svc := planner.NewService(cfg.Planner, nil, nil)
	svc.SetCatalog(cat, source)

	resp, err := svc.GeneratePlan(ctx, req)
	if err != nil {
		return err
	}

	if *asJSON {
		data, err := common.ToIndentedJSON(resp)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, data)
		return nil
	}
	printPlan(out, resp)
	return nil
}

func printPlan(w io.Writer, resp *planner.PlanResponse) {
	if resp.Plan == nil {
		fmt.Fprintln(w, resp.Summary)
		return
	}
	for _, m := range resp.Plan.Meals {
		fmt.Fprintf(w, "%-12s %-40s %5d kcal %4d g protein  [%s]\n",
			m.Slot, truncate(m.Recipe.Name, 40), m.Calories, m.Protein, m.Strategy)
	}
	for _, name := range resp.Skipped {
		fmt.Fprintf(w, "%-12s (no recipe available)\n", name)
	}
	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintln(w, resp.Summary)
	fmt.Fprintf(w, "seed: %d\n", resp.Seed)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func runStats(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(out)
	path := fs.String("catalog", "", "Catalog CSV or SQLite path (defaults to config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cat, source, err := loadCatalog(ctx, cfg.Catalog, *path)
	if err != nil {
		return err
	}
	stats := mealplan.ComputeStats(cat)

	fmt.Fprintf(out, "source:        %s (%s)\n", source.Location, source.Kind)
	fmt.Fprintf(out, "recipes:       %d\n", stats.TotalRecipes)
	fmt.Fprintf(out, "rated:         %d\n", stats.RatedRecipes)
	fmt.Fprintf(out, "avg calories:  %.1f\n", stats.AvgCalories)
	fmt.Fprintf(out, "avg protein:   %.1f\n", stats.AvgProtein)

	fmt.Fprintln(out, "\nmeal categories:")
	printCounts(out, stats.MealCategoryCounts)
	fmt.Fprintln(out, "\nfeatures:")
	printCounts(out, stats.FeatureCounts)
	return nil
}

func printCounts(w io.Writer, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-20s %d\n", k, counts[k])
	}
}

func runImport(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(out)
	csvPath := fs.String("csv", "", "Catalog CSV to import")
	dbPath := fs.String("db", "data/catalog.db", "SQLite database to write")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *csvPath == "" {
		return errors.New("import requires -csv")
	}

	cat, err := catalog.LoadCSVFile(*csvPath)
	if err != nil {
		return err
	}

	store, err := catalog.OpenStore(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Import(ctx, cat)
	if err != nil {
		return err
	}

	common.LogInfo("食譜已匯入", zap.String("db", *dbPath), zap.Int("recipes", n))
	fmt.Fprintf(out, "Imported %d recipes into %s\n", n, *dbPath)
	return nil
}
