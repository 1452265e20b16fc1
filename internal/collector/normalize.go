package collector

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

const summaryMaxChars = 250

// ISOLayout 与 JS toISOString 输出一致（UTC，毫秒）
const ISOLayout = "2006-01-02T15:04:05.000Z"

var tagRe = regexp.MustCompile(`<[^>]*>`)

// 顺序固定：&amp; 必须在 &lt; / &gt; 之前
var entityReplacer = []struct{ from, to string }{
	{"&nbsp;", " "},
	{"&amp;", "&"},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&quot;", `"`},
	{"&#39;", "'"},
}

// CleanHTML 摘要使用的清洗路径：去标签 -> 解实体 -> 合并空白 -> trim
func CleanHTML(s string) string {
	if s == "" {
		return ""
	}
	s = tagRe.ReplaceAllString(s, "")
	for _, e := range entityReplacer {
		s = strings.ReplaceAll(s, e.from, e.to)
	}
	// strings.Fields 同时完成合并空白和 trim
	s = strings.Join(strings.Fields(s), " ")
	return stripControl(s)
}

// CleanText 标题使用的清洗路径：去控制字符、去非 ASCII、trim
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r > unicode.MaxASCII || r <= 0x1f || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// stripControl 去掉空白合并后仍残留的 C0/C1 控制字符
func stripControl(s string) string {
	if strings.IndexFunc(s, unicode.IsControl) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// truncateRunes 按字符截断，不追加省略号
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}

// RawItem 任意来源的原始条目，交给 Normalize 统一处理
type RawItem struct {
	Title     string
	Summary   string
	Link      string
	GUID      string
	Source    string
	Published *time.Time
	Extra     map[string]any
	// 为 true 时只用标题分类（讨论源的摘要是模板文案）
	TitleOnlyTopic bool
}

// Normalizer 把原始条目映射成 Article；纯函数，不做 I/O
type Normalizer struct {
	Classify func(title, summary string) string
	Now      func() time.Time
}

// Normalize idx 为条目在源中的序号，sourceKey 用于生成 ID
func (n Normalizer) Normalize(raw RawItem, sourceKey string, runAt time.Time, idx int) Article {
	title := CleanText(raw.Title)
	fullSummary := CleanHTML(raw.Summary)
	summary := truncateRunes(fullSummary, summaryMaxChars)

	url := raw.Link
	if url == "" {
		url = raw.GUID
	}
	if url == "" {
		url = "#"
	}

	published := runAt
	if raw.Published != nil && !raw.Published.IsZero() {
		published = *raw.Published
	}

	now := time.Now
	if n.Now != nil {
		now = n.Now
	}

	a := Article{
		ID:          articleID(sourceKey, runAt, idx),
		Title:       title,
		Summary:     summary,
		URL:         url,
		Source:      raw.Source,
		PublishedAt: published.UTC().Format(ISOLayout),
		TimeAgo:     TimeAgo(published, now()),
		Extra:       raw.Extra,
	}
	if n.Classify != nil {
		// 分类使用截断前的摘要
		topicText := fullSummary
		if raw.TitleOnlyTopic {
			topicText = ""
		}
		a.Topic = n.Classify(title, topicText)
	}
	return a
}
