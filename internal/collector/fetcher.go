package collector

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Article 归一化后的文章，下游所有环节都使用这个结构
type Article struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	PublishedAt string `json:"publishedAt"`
	Topic       string `json:"topic"`
	// 仅用于展示，下游逻辑不读取
	TimeAgo string         `json:"timeAgo"`
	Extra   map[string]any `json:"-"`
}

// Kind 决定合并顺序：所有订阅源在前，讨论源在后
type Kind int

const (
	KindSyndication Kind = iota
	KindDiscussion
)

func (k Kind) String() string {
	if k == KindDiscussion {
		return "discussion"
	}
	return "syndication"
}

// Fetcher 抽象每一个数据源
type Fetcher interface {
	Name() string
	Kind() Kind
	Timeout() time.Duration
	// runAt 是本轮聚合的开始时间，用于生成 ID 以及缺省发布时间
	Fetch(ctx context.Context, runAt time.Time) ([]Article, error)
}

type fetchResult struct {
	items []Article
	err   error
}

// FetchWithTimeout 让一次抓取与独立的超时赛跑，任何失败都只返回空列表。
// 超时后不等待底层请求结束，结果直接丢弃。
func FetchWithTimeout(ctx context.Context, f Fetcher, runAt time.Time) []Article {
	ctx, cancel := context.WithTimeout(ctx, f.Timeout())
	defer cancel()

	// 带缓冲，超时后晚到的结果不会阻塞 goroutine
	ch := make(chan fetchResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- fetchResult{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		items, err := f.Fetch(ctx, runAt)
		ch <- fetchResult{items: items, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			log.Printf("fetch %s error: %v", f.Name(), r.err)
			return nil
		}
		log.Printf("fetch %s done: %d items", f.Name(), len(r.items))
		return r.items
	case <-ctx.Done():
		log.Printf("fetch %s error: %v (timeout %s)", f.Name(), ctx.Err(), f.Timeout())
		return nil
	}
}

func articleID(source string, runAt time.Time, idx int) string {
	return fmt.Sprintf("%s-%d-%d", source, runAt.UnixMilli(), idx)
}
