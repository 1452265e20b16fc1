// Package topic 根据标题和摘要给文章打主题标签。
// 规则表是有序列表，按顺序第一个命中的主题胜出，不做"最佳匹配"。
package topic

import (
	"strings"

	"github.com/ajwill85/hri-3.0/internal/config"
)

type rule struct {
	name     string
	keywords []string
}

// Categorizer 无状态，可并发使用
type Categorizer struct {
	rules []rule
	def   string
}

// New 按配置顺序构造规则表，关键词统一转小写
func New(tc config.TaxonomyConfig) *Categorizer {
	c := &Categorizer{
		rules: make([]rule, 0, len(tc.Topics)),
		def:   tc.Default,
	}
	if c.def == "" {
		c.def = config.DefaultTopic
	}
	for _, t := range tc.Topics {
		kws := make([]string, 0, len(t.Keywords))
		for _, kw := range t.Keywords {
			if kw = strings.ToLower(kw); kw != "" {
				kws = append(kws, kw)
			}
		}
		c.rules = append(c.rules, rule{name: t.Name, keywords: kws})
	}
	return c
}

// Classify 在 "title summary" 的小写文本里做子串匹配
func (c *Categorizer) Classify(title, summary string) string {
	content := strings.ToLower(title + " " + summary)
	for _, r := range c.rules {
		for _, kw := range r.keywords {
			if strings.Contains(content, kw) {
				return r.name
			}
		}
	}
	return c.def
}

// Topics 返回规则表中的主题名（保持优先级顺序）
func (c *Categorizer) Topics() []string {
	out := make([]string, 0, len(c.rules))
	for _, r := range c.rules {
		out = append(out, r.name)
	}
	return out
}

func (c *Categorizer) Default() string {
	return c.def
}
