package catalog

import (
	"context"
	"fmt"
	"time"

	"meal-planner/internal/core/mealplan"
	"meal-planner/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// RemoteFetcher 透過 HTTP 下載匯出的 CSV
type RemoteFetcher struct {
	client *resty.Client
}

// NewRemoteFetcher 建立下載器，timeout <= 0 時不設逾時
func NewRemoteFetcher(timeout time.Duration) *RemoteFetcher {
	client := resty.New().
		SetHeader("Accept", "text/csv").
		SetHeader("User-Agent", "meal-planner").
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &RemoteFetcher{client: client}
}

// Fetch 下載並解析 CSV
func (f *RemoteFetcher) Fetch(ctx context.Context, url string) (*mealplan.Catalog, error) {
	start := time.Now()

	resp, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		return nil, fmt.Errorf("failed to fetch catalog: unexpected status %d", resp.StatusCode())
	}

	catalog, skipped, err := ParseCSV(body)
	if err != nil {
		return nil, err
	}

	common.LogInfo("遠端食譜目錄下載完成",
		zap.String("url", url),
		zap.Int("recipes", catalog.Len()),
		zap.Int("skipped", skipped),
		zap.Duration("耗時", time.Since(start)),
	)
	return catalog, nil
}
