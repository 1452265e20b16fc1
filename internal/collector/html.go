package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/ajwill85/hri-3.0/internal/config"
)

// HTMLFetcher 针对没有 RSS 的站点，用 CSS 选择器解析文章列表页。
// 在合并顺序上与 FeedFetcher 等价，属于订阅源。
type HTMLFetcher struct {
	Key          string
	URL          string
	Label        string
	Selectors    config.Selectors
	MaxItems     int
	FetchTimeout time.Duration
	Normalizer   Normalizer
}

func (h *HTMLFetcher) Name() string {
	return h.Key
}

func (h *HTMLFetcher) Kind() Kind {
	return KindSyndication
}

func (h *HTMLFetcher) Timeout() time.Duration {
	if h.FetchTimeout > 0 {
		return h.FetchTimeout
	}
	return feedDefaultTimeout
}

// Fetch colly 不支持 context，超时由 FetchWithTimeout 负责丢弃结果
func (h *HTMLFetcher) Fetch(_ context.Context, runAt time.Time) ([]Article, error) {
	c := colly.NewCollector(
		colly.UserAgent(feedUserAgent),
	)
	c.SetRequestTimeout(h.Timeout())

	limit := h.MaxItems
	if limit <= 0 {
		limit = feedDefaultMax
	}
	source := h.Label
	if source == "" {
		source = h.Key
	}

	raws := make([]RawItem, 0, limit)
	c.OnHTML(h.Selectors.Item, func(e *colly.HTMLElement) {
		if len(raws) >= limit {
			return
		}
		raws = append(raws, h.rawItem(e, source))
	})

	if err := c.Visit(h.URL); err != nil {
		return nil, fmt.Errorf("%s: visit: %w", h.Key, err)
	}

	out := make([]Article, 0, len(raws))
	for i, raw := range raws {
		out = append(out, h.Normalizer.Normalize(raw, h.Key, runAt, i))
	}
	return out, nil
}

func (h *HTMLFetcher) rawItem(e *colly.HTMLElement, source string) RawItem {
	title := strings.TrimSpace(e.Text)
	if h.Selectors.Title != "" {
		title = strings.TrimSpace(e.ChildText(h.Selectors.Title))
	}
	if title == "" {
		title = feedDefaultTitle
	}

	href := e.Attr("href")
	if h.Selectors.Link != "" {
		href = e.ChildAttr(h.Selectors.Link, "href")
	}
	if href != "" {
		href = e.Request.AbsoluteURL(href)
	}

	summary := ""
	if h.Selectors.Summary != "" {
		summary = strings.TrimSpace(e.ChildText(h.Selectors.Summary))
	}
	if summary == "" {
		summary = "Security news update from " + source
	}

	// 列表页一般没有发布时间，统一使用本轮抓取时间
	return RawItem{
		Title:   title,
		Summary: summary,
		Link:    href,
		Source:  source,
	}
}
