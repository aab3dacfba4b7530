package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"meal-planner/internal/core/mealplan"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// 目錄格式
const (
	FormatCSV    = "csv"
	FormatSQLite = "sqlite"
)

// Source 描述目錄從哪裡載入
type Source struct {
	Kind     string    `json:"kind"`
	Location string    `json:"location"`
	Recipes  int       `json:"recipes"`
	LoadedAt time.Time `json:"loaded_at"`
}

// DetectFormat 未指定格式時依副檔名判斷
func DetectFormat(path, format string) string {
	if format != "" {
		return format
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	}
	return FormatCSV
}

// Load 依設定載入目錄：有 URL 時下載 CSV，否則讀取本機 CSV 或 SQLite
func Load(ctx context.Context, cfg config.CatalogConfig) (*mealplan.Catalog, Source, error) {
	start := time.Now()

	var (
		catalog *mealplan.Catalog
		source  Source
		err     error
	)
	switch {
	case cfg.URL != "":
		source = Source{Kind: "remote", Location: cfg.URL}
		catalog, err = NewRemoteFetcher(cfg.FetchTimeout).Fetch(ctx, cfg.URL)
	case DetectFormat(cfg.Path, cfg.Format) == FormatSQLite:
		source = Source{Kind: FormatSQLite, Location: cfg.Path}
		catalog, err = LoadSQLite(ctx, cfg.Path)
	default:
		source = Source{Kind: FormatCSV, Location: cfg.Path}
		catalog, err = LoadCSVFile(cfg.Path)
	}
	if err != nil {
		return nil, source, common.ErrCatalogLoadFailed.Wrap(err)
	}

	source.Recipes = catalog.Len()
	source.LoadedAt = time.Now()

	common.LogInfo("食譜目錄已載入",
		zap.String("kind", source.Kind),
		zap.String("location", source.Location),
		zap.Int("recipes", source.Recipes),
		zap.Duration("耗時", time.Since(start)),
	)
	return catalog, source, nil
}

// LoadCSVFile 讀取本機 CSV
func LoadCSVFile(path string) (*mealplan.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	catalog, _, err := ParseCSV(f)
	return catalog, err
}

// LoadSQLite 從 SQLite 讀取
func LoadSQLite(ctx context.Context, path string) (*mealplan.Catalog, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("catalog database not found: %w", err)
	}
	store, err := OpenStore(path)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Load(ctx)
}
