package publisher

import (
	"context"
	"log"
	"time"

	"golang.org/x/time/rate"

	"github.com/ajwill85/hri-3.0/internal/collector"
	"github.com/ajwill85/hri-3.0/internal/storage"
)

// Poster 外部发帖接口
type Poster interface {
	Post(ctx context.Context, a collector.Article) error
}

// LedgerWriter 发布阶段只追加
type LedgerWriter interface {
	Put(ctx context.Context, rec storage.PostedRecord) error
}

type Result struct {
	Success  bool   `json:"success"`
	Title    string `json:"title"`
	Category string `json:"category"`
	URL      string `json:"url"`
	Error    string `json:"error,omitempty"`
}

type Report struct {
	Posted  int      `json:"posted"`
	Failed  int      `json:"failed"`
	Results []Result `json:"results"`
}

// Publisher 逐条发布，两次发帖之间至少间隔 interval
type Publisher struct {
	poster  Poster
	ledger  LedgerWriter
	limiter *rate.Limiter
	now     func() time.Time
}

func New(poster Poster, ledger LedgerWriter, interval time.Duration) *Publisher {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Publisher{
		poster:  poster,
		ledger:  ledger,
		limiter: rate.NewLimiter(limit, 1),
		now:     time.Now,
	}
}

// Publish 单条失败只记录在报告中，不影响后续条目
func (p *Publisher) Publish(ctx context.Context, selected []collector.Article) Report {
	report := Report{Results: make([]Result, 0, len(selected))}

	for _, a := range selected {
		res := Result{Title: a.Title, Category: a.Topic, URL: a.URL}

		if err := p.limiter.Wait(ctx); err != nil {
			res.Error = err.Error()
			report.Failed++
			report.Results = append(report.Results, res)
			continue
		}

		if err := p.poster.Post(ctx, a); err != nil {
			log.Printf("post %s error: %v", a.URL, err)
			res.Error = err.Error()
			report.Failed++
			report.Results = append(report.Results, res)
			continue
		}

		rec := storage.PostedRecord{
			ArticleURL: a.URL,
			Title:      a.Title,
			Category:   orUnknown(a.Topic),
			Source:     orUnknown(a.Source),
			PostedAt:   p.now().UTC(),
		}
		if err := p.ledger.Put(ctx, rec); err != nil {
			// 帖子已发出，下次运行可能重复发布
			log.Printf("warn: ledger write %s failed: %v", a.URL, err)
		}

		log.Printf("posted %q [%s]", a.Title, a.Topic)
		res.Success = true
		report.Posted++
		report.Results = append(report.Results, res)
	}
	return report
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
