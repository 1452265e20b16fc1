package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/ajwill85/hri-3.0/internal/collector"
	"github.com/ajwill85/hri-3.0/internal/config"
	"github.com/ajwill85/hri-3.0/internal/processor"
	"github.com/ajwill85/hri-3.0/internal/publisher"
	"github.com/ajwill85/hri-3.0/internal/scheduler"
	"github.com/ajwill85/hri-3.0/internal/storage"
)

type output struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message,omitempty"`
	Categories []string           `json:"categories,omitempty"`
	Posted     int                `json:"posted"`
	Failed     int                `json:"failed"`
	Results    []publisher.Result `json:"results,omitempty"`
	Timestamp  string             `json:"timestamp"`
}

// 每日发布入口：取最新聚合结果，按分类均衡挑选未发布文章，逐条发布到 LinkedIn
func main() {
	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}
	if err := cfg.ValidatePublish(); err != nil {
		fail(err)
	}

	ctx := context.Background()

	var store *storage.Store
	if cfg.Ledger.Backend == "postgres" || cfg.Ledger.Backend == "redis" {
		store, err = storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr)
		if err != nil {
			fail(err)
		}
		defer store.Close()
	}
	ledger, err := storage.NewLedger(ctx, cfg.Ledger, store)
	if err != nil {
		fail(err)
	}

	articles, err := loadArticles(ctx, cfg)
	if err != nil {
		fail(err)
	}
	log.Printf("poster: %d ranked articles, targets=%v quota=%d", len(articles), cfg.Publish.TargetCategories, cfg.Publish.Quota)

	selected := publisher.Select(ctx, articles, cfg.Publish.TargetCategories, cfg.Publish.Quota, ledger)
	if len(selected) == 0 {
		writeJSON(output{
			Success:    true,
			Message:    "No new articles to post",
			Categories: cfg.Publish.TargetCategories,
			Timestamp:  config.Now().UTC().Format(collector.ISOLayout),
		})
		return
	}

	p := publisher.New(publisher.NewLinkedInClient(ctx, cfg.LinkedIn), ledger, cfg.Publish.Interval)
	report := p.Publish(ctx, selected)
	log.Printf("poster done: posted=%d failed=%d", report.Posted, report.Failed)

	writeJSON(output{
		Success:   true,
		Posted:    report.Posted,
		Failed:    report.Failed,
		Results:   report.Results,
		Timestamp: config.Now().UTC().Format(collector.ISOLayout),
	})
}

// loadArticles 配置了 FEED_ENDPOINT 时读取远端结果，否则在进程内跑一轮聚合
func loadArticles(ctx context.Context, cfg *config.Config) ([]collector.Article, error) {
	if cfg.Publish.FeedEndpoint != "" {
		return publisher.FetchFeed(ctx, &http.Client{Timeout: 30 * time.Second}, cfg.Publish.FeedEndpoint)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	feed, err := scheduler.NewFromConfig(cfg, &http.Client{}).Run(ctx)
	if err != nil {
		return nil, err
	}
	return feed.Articles, nil
}

func fail(err error) {
	log.Printf("poster failed: %v", err)
	writeJSON(processor.NewFailure("Failed to post to LinkedIn", err, config.Now(), config.Version))
	os.Exit(1)
}

func writeJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatalf("encode output failed: %v", err)
	}
}
