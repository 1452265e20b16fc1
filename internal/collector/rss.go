package collector

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

const (
	feedUserAgent      = "HumanRiskIntelligence/2.0"
	feedDefaultTitle   = "Security News Update"
	feedDefaultMax     = 8
	feedDefaultTimeout = 8 * time.Second
)

// FeedFetcher 抓取一个 RSS/Atom 订阅源
type FeedFetcher struct {
	Key          string
	URL          string
	MaxItems     int
	FetchTimeout time.Duration
	Normalizer   Normalizer
	Client       *http.Client
}

func (f *FeedFetcher) Name() string {
	return f.Key
}

func (f *FeedFetcher) Kind() Kind {
	return KindSyndication
}

func (f *FeedFetcher) Timeout() time.Duration {
	if f.FetchTimeout > 0 {
		return f.FetchTimeout
	}
	return feedDefaultTimeout
}

func (f *FeedFetcher) Fetch(ctx context.Context, runAt time.Time) ([]Article, error) {
	parser := gofeed.NewParser()
	parser.UserAgent = feedUserAgent
	if f.Client != nil {
		parser.Client = f.Client
	}

	feed, err := parser.ParseURLWithContext(f.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: parse feed: %w", f.Key, err)
	}
	log.Printf("fetched %s: %d items", f.Key, len(feed.Items))

	limit := f.MaxItems
	if limit <= 0 {
		limit = feedDefaultMax
	}
	items := feed.Items
	if len(items) > limit {
		items = items[:limit]
	}

	source := feed.Title
	if source == "" {
		source = f.Key
	}

	out := make([]Article, 0, len(items))
	for i, it := range items {
		out = append(out, f.Normalizer.Normalize(feedRawItem(it, source), f.Key, runAt, i))
	}
	return out, nil
}

func feedRawItem(it *gofeed.Item, source string) RawItem {
	title := it.Title
	if title == "" {
		title = feedDefaultTitle
	}

	summary := it.Description
	if summary == "" {
		summary = it.Content
	}
	if summary == "" {
		summary = "Security news update from " + source
	}

	published := it.PublishedParsed
	if published == nil {
		published = it.UpdatedParsed
	}

	return RawItem{
		Title:     title,
		Summary:   summary,
		Link:      it.Link,
		GUID:      it.GUID,
		Source:    source,
		Published: published,
	}
}
