package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	redditUserAgent        = "AWS:HumanRiskIntelligence:v2.0.0"
	redditMaxResponseBytes = 1 << 20 // 1MB
	redditDefaultMax       = 5
	redditDefaultTimeout   = 5 * time.Second
)

// DiscussionFetcher 通过 reddit 的 listing JSON 抓取社区讨论帖
type DiscussionFetcher struct {
	Key          string
	URL          string
	Label        string
	MaxItems     int
	FetchTimeout time.Duration
	Normalizer   Normalizer
	Client       *http.Client
}

func (d *DiscussionFetcher) Name() string {
	if d.Key != "" {
		return d.Key
	}
	return "reddit"
}

func (d *DiscussionFetcher) Kind() Kind {
	return KindDiscussion
}

func (d *DiscussionFetcher) Timeout() time.Duration {
	if d.FetchTimeout > 0 {
		return d.FetchTimeout
	}
	return redditDefaultTimeout
}

type redditListing struct {
	Data *struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	Stickied    bool    `json:"stickied"`
	IsSelf      bool    `json:"is_self"`
	URL         string  `json:"url"`
}

func (d *DiscussionFetcher) Fetch(ctx context.Context, runAt time.Time) ([]Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", d.Name(), err)
	}
	req.Header.Set("User-Agent", redditUserAgent)

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch listing: %w", d.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %d", d.Name(), resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, redditMaxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: read listing: %w", d.Name(), err)
	}

	var listing redditListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("%s: unmarshal listing: %w", d.Name(), err)
	}
	if listing.Data == nil {
		return nil, nil
	}

	limit := d.MaxItems
	if limit <= 0 {
		limit = redditDefaultMax
	}

	out := make([]Article, 0, limit)
	for _, child := range listing.Data.Children {
		if len(out) >= limit {
			break
		}
		p := child.Data
		// 置顶帖和纯文字帖没有外链，跳过
		if p.Stickied || p.IsSelf || p.URL == "" {
			continue
		}
		out = append(out, d.Normalizer.Normalize(d.rawItem(p), d.Name(), runAt, len(out)))
	}
	return out, nil
}

func (d *DiscussionFetcher) rawItem(p redditPost) RawItem {
	created := time.UnixMilli(int64(p.CreatedUTC * 1000))
	return RawItem{
		Title:   p.Title,
		Summary: fmt.Sprintf("Reddit discussion with %d upvotes. %d comments.", p.Score, p.NumComments),
		Link:    p.URL,
		Source:  d.Label,
		// created_utc 为 0 时按缺省发布时间处理
		Published:      nonZeroTime(created, p.CreatedUTC > 0),
		TitleOnlyTopic: true,
		Extra: map[string]any{
			"reddit_id": p.ID,
			"score":     p.Score,
			"comments":  p.NumComments,
		},
	}
}

func nonZeroTime(t time.Time, ok bool) *time.Time {
	if !ok {
		return nil
	}
	return &t
}
