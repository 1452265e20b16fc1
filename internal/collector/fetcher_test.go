package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type stubFetcher struct {
	name    string
	timeout time.Duration
	delay   time.Duration
	items   []Article
	err     error
	panics  bool
}

func (s *stubFetcher) Name() string           { return s.name }
func (s *stubFetcher) Kind() Kind             { return KindSyndication }
func (s *stubFetcher) Timeout() time.Duration { return s.timeout }

func (s *stubFetcher) Fetch(_ context.Context, _ time.Time) ([]Article, error) {
	// 故意忽略 ctx，模拟不响应取消的底层 I/O
	time.Sleep(s.delay)
	if s.panics {
		panic("boom")
	}
	return s.items, s.err
}

func TestFetchWithTimeoutReturnsItems(t *testing.T) {
	f := &stubFetcher{name: "ok", timeout: time.Second, items: []Article{{Title: "a"}, {Title: "b"}}}
	got := FetchWithTimeout(context.Background(), f, time.Now())
	if len(got) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got))
	}
}

func TestFetchWithTimeoutAbandonsSlowSource(t *testing.T) {
	f := &stubFetcher{name: "slow", timeout: 50 * time.Millisecond, delay: 2 * time.Second, items: []Article{{Title: "late"}}}

	start := time.Now()
	got := FetchWithTimeout(context.Background(), f, time.Now())
	elapsed := time.Since(start)

	if len(got) != 0 {
		t.Fatalf("expected empty result on timeout, got %d", len(got))
	}
	if elapsed > time.Second {
		t.Fatalf("timeout should not wait for the fetch: took %s", elapsed)
	}
}

func TestFetchWithTimeoutSwallowsErrorsAndPanics(t *testing.T) {
	failing := &stubFetcher{name: "err", timeout: time.Second, err: errors.New("network down")}
	if got := FetchWithTimeout(context.Background(), failing, time.Now()); len(got) != 0 {
		t.Fatalf("expected empty result on error, got %d", len(got))
	}

	panicking := &stubFetcher{name: "panic", timeout: time.Second, panics: true}
	if got := FetchWithTimeout(context.Background(), panicking, time.Now()); len(got) != 0 {
		t.Fatalf("expected empty result on panic, got %d", len(got))
	}
}

func testNormalizer(now time.Time) Normalizer {
	return Normalizer{
		Classify: func(title, summary string) string {
			if strings.Contains(strings.ToLower(title+" "+summary), "cloud") {
				return "Cloud Security"
			}
			return "General Security"
		},
		Now: func() time.Time { return now },
	}
}

func rssDocument(items int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>Test Security Feed</title><link>https://feed.example</link>`)
	// 第一条：HTML 描述
	b.WriteString(`<item><title>Cloud keys leaked</title><link>https://feed.example/0</link><description>&lt;p&gt;Keys &amp;amp; tokens&lt;/p&gt;</description><pubDate>Wed, 03 Jan 2024 10:00:00 GMT</pubDate></item>`)
	// 第二条：无标题、无日期、无描述
	b.WriteString(`<item><title></title><link>https://feed.example/1</link></item>`)
	for i := 2; i < items; i++ {
		fmt.Fprintf(&b, `<item><title>Item %d</title><link>https://feed.example/%d</link><description>d</description><pubDate>Wed, 03 Jan 2024 09:00:00 GMT</pubDate></item>`, i, i)
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

func TestFeedFetcherParsesAndLimits(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = io.WriteString(w, rssDocument(12))
	}))
	defer srv.Close()

	runAt := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
	f := &FeedFetcher{Key: "testfeed", URL: srv.URL, MaxItems: 8, Normalizer: testNormalizer(runAt)}

	items, err := f.Fetch(context.Background(), runAt)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if gotUA != feedUserAgent {
		t.Fatalf("User-Agent = %q, want %q", gotUA, feedUserAgent)
	}
	if len(items) != 8 {
		t.Fatalf("expected 8 items (source order cap), got %d", len(items))
	}

	first := items[0]
	if first.Title != "Cloud keys leaked" || first.Summary != "Keys & tokens" {
		t.Fatalf("unexpected first item: %+v", first)
	}
	if first.Source != "Test Security Feed" || first.Topic != "Cloud Security" {
		t.Fatalf("unexpected source/topic: %+v", first)
	}
	if first.PublishedAt != "2024-01-03T10:00:00.000Z" || first.TimeAgo != "2 hours ago" {
		t.Fatalf("unexpected dates: %q %q", first.PublishedAt, first.TimeAgo)
	}
	if first.ID != fmt.Sprintf("testfeed-%d-0", runAt.UnixMilli()) {
		t.Fatalf("unexpected id %q", first.ID)
	}

	second := items[1]
	if second.Title != feedDefaultTitle {
		t.Fatalf("Title fallback = %q", second.Title)
	}
	if second.Summary != "Security news update from Test Security Feed" {
		t.Fatalf("Summary fallback = %q", second.Summary)
	}
	if second.PublishedAt != "2024-01-03T12:00:00.000Z" {
		t.Fatalf("PublishedAt fallback = %q", second.PublishedAt)
	}
	if items[7].Title != "Item 7" {
		t.Fatalf("items should keep source order, got %q", items[7].Title)
	}
}

func TestFeedFetcherHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := &FeedFetcher{Key: "broken", URL: srv.URL, FetchTimeout: time.Second}
	if _, err := f.Fetch(context.Background(), time.Now()); err == nil {
		t.Fatalf("expected error for 502 feed")
	}
	if got := FetchWithTimeout(context.Background(), f, time.Now()); len(got) != 0 {
		t.Fatalf("expected empty contribution, got %d", len(got))
	}
}
