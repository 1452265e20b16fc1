package processor

import (
	"sort"
	"strings"
	"time"

	"github.com/ajwill85/hri-3.0/internal/collector"
)

const (
	// DefaultLimit 聚合结果最多保留的条数
	DefaultLimit = 50
	dedupKeyMax  = 100
)

// Aggregator 合并 -> 按标题去重 -> 按发布时间排序 -> 截断；纯函数，不访问网络和存储
type Aggregator struct {
	Limit int
}

func NewAggregator(limit int) *Aggregator {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Aggregator{Limit: limit}
}

// Aggregate batches 的顺序就是合并顺序，也是去重时的保留优先级
func (a *Aggregator) Aggregate(batches [][]collector.Article) []collector.Article {
	total := 0
	for _, b := range batches {
		total += len(b)
	}

	out := make([]collector.Article, 0, total)
	seen := make(map[string]struct{}, total)
	for _, b := range batches {
		for _, it := range b {
			key := DedupKey(it.Title)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, it)
		}
	}

	Rank(out)

	if len(out) > a.Limit {
		out = out[:a.Limit]
	}
	return out
}

// DedupKey 小写后只保留 a-z0-9，最长 100 个字符
func DedupKey(title string) string {
	title = strings.ToLower(title)
	var b strings.Builder
	b.Grow(len(title))
	for i := 0; i < len(title) && b.Len() < dedupKeyMax; i++ {
		c := title[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Rank 按发布时间倒序的稳定排序，无法解析的时间排在所有合法时间之后
func Rank(items []collector.Article) {
	type key struct {
		t  time.Time
		ok bool
	}
	keys := make([]key, len(items))
	for i := range items {
		t, ok := parsePublished(items[i].PublishedAt)
		keys[i] = key{t: t, ok: ok}
	}

	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		a, b := keys[idx[i]], keys[idx[j]]
		if a.ok != b.ok {
			return a.ok
		}
		return a.t.After(b.t)
	})

	sorted := make([]collector.Article, len(items))
	for i, k := range idx {
		sorted[i] = items[k]
	}
	copy(items, sorted)
}

var publishedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
}

// ParsePublished 解析失败返回零值
func ParsePublished(s string) time.Time {
	t, _ := parsePublished(s)
	return t
}

func parsePublished(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
