package collector

import (
	"net/http"

	"github.com/ajwill85/hri-3.0/internal/config"
)

// FromConfig 按配置顺序注册采集器：订阅源在前，讨论源在后
func FromConfig(cfg *config.Config, n Normalizer, client *http.Client) []Fetcher {
	fetchers := make([]Fetcher, 0, len(cfg.Sources)+1)
	for _, s := range cfg.Sources {
		switch s.Kind {
		case config.KindHTML:
			fetchers = append(fetchers, &HTMLFetcher{
				Key:          s.Key,
				URL:          s.URL,
				Selectors:    s.Selectors,
				MaxItems:     cfg.Feed.MaxItems,
				FetchTimeout: cfg.Feed.Timeout,
				Normalizer:   n,
			})
		default:
			fetchers = append(fetchers, &FeedFetcher{
				Key:          s.Key,
				URL:          s.URL,
				MaxItems:     cfg.Feed.MaxItems,
				FetchTimeout: cfg.Feed.Timeout,
				Normalizer:   n,
				Client:       client,
			})
		}
	}

	if cfg.Discussion.Enabled {
		fetchers = append(fetchers, &DiscussionFetcher{
			Key:          "reddit",
			URL:          cfg.Discussion.URL,
			Label:        cfg.Discussion.Label,
			MaxItems:     cfg.Discussion.MaxItems,
			FetchTimeout: cfg.Discussion.Timeout,
			Normalizer:   n,
			Client:       client,
		})
	}
	return fetchers
}
