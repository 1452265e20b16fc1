package publisher

import (
	"context"
	"log"

	"github.com/ajwill85/hri-3.0/internal/collector"
	"github.com/ajwill85/hri-3.0/internal/storage"
)

// LedgerReader 选择阶段只读台账
type LedgerReader interface {
	Get(ctx context.Context, articleURL string) (storage.PostedRecord, bool, error)
}

// Select 从已排序的文章中挑出至多 quota 篇待发布文章。
// 第一轮每个分类最多取一篇，第二轮按原顺序补足；结果保持输入顺序中的插入次序，不重新排序。
func Select(ctx context.Context, ranked []collector.Article, targets []string, quota int, ledger LedgerReader) []collector.Article {
	if quota <= 0 {
		return nil
	}

	wanted := make(map[string]bool, len(targets))
	for _, t := range targets {
		wanted[t] = true
	}

	candidates := make([]collector.Article, 0, len(ranked))
	for _, a := range ranked {
		if !wanted[a.Topic] {
			continue
		}
		_, posted, err := ledger.Get(ctx, a.URL)
		if err != nil {
			// 查询失败按未发布处理
			log.Printf("warn: ledger lookup %s failed, treating as not posted: %v", a.URL, err)
			posted = false
		}
		if posted {
			continue
		}
		candidates = append(candidates, a)
	}

	selected := make([]collector.Article, 0, quota)
	picked := make(map[int]bool, quota)
	seenTopic := make(map[string]bool, len(targets))

	for i, a := range candidates {
		if len(selected) >= quota || len(seenTopic) == len(wanted) {
			break
		}
		if seenTopic[a.Topic] {
			continue
		}
		seenTopic[a.Topic] = true
		picked[i] = true
		selected = append(selected, a)
	}

	for i, a := range candidates {
		if len(selected) >= quota {
			break
		}
		if picked[i] {
			continue
		}
		picked[i] = true
		selected = append(selected, a)
	}
	return selected
}
