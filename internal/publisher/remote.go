package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ajwill85/hri-3.0/internal/collector"
)

type remoteFeed struct {
	Success  bool                `json:"success"`
	Articles []collector.Article `json:"articles"`
}

// FetchFeed 从已部署的聚合接口读取文章列表，只用到 articles 字段
func FetchFeed(ctx context.Context, client *http.Client, endpoint string) ([]collector.Article, error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("publisher: build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("publisher: get feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("publisher: get feed: status %d", resp.StatusCode)
	}

	var feed remoteFeed
	if err := json.NewDecoder(io.LimitReader(resp.Body, 8<<20)).Decode(&feed); err != nil {
		return nil, fmt.Errorf("publisher: decode feed: %w", err)
	}
	return feed.Articles, nil
}
