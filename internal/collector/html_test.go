package collector

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ajwill85/hri-3.0/internal/config"
)

const listingPage = `<html><body><ul>
<li class="post"><a href="/a">Cloud outage root cause</a><p class="dek">Provider <b>explains</b></p></li>
<li class="post"><a href="https://other.example/b">Second</a></li>
<li class="post"><a href="/c">Third</a></li>
</ul></body></html>`

func TestHTMLFetcherSelectors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, listingPage)
	}))
	defer srv.Close()

	runAt := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
	h := &HTMLFetcher{
		Key:        "listing",
		URL:        srv.URL,
		Label:      "Listing Site",
		MaxItems:   2,
		Selectors:  config.Selectors{Item: "li.post", Title: "a", Link: "a", Summary: "p.dek"},
		Normalizer: testNormalizer(runAt),
	}

	items, err := h.Fetch(context.Background(), runAt)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].URL != srv.URL+"/a" || items[1].URL != "https://other.example/b" {
		t.Fatalf("unexpected urls: %q %q", items[0].URL, items[1].URL)
	}
	if items[0].Summary != "Provider explains" || items[0].Topic != "Cloud Security" {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	if items[1].Summary != "Security news update from Listing Site" {
		t.Fatalf("summary fallback = %q", items[1].Summary)
	}
	if items[0].PublishedAt != "2024-01-03T12:00:00.000Z" {
		t.Fatalf("PublishedAt = %q", items[0].PublishedAt)
	}
}
