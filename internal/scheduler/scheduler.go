package scheduler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/ajwill85/hri-3.0/internal/collector"
	"github.com/ajwill85/hri-3.0/internal/config"
	"github.com/ajwill85/hri-3.0/internal/processor"
	"github.com/ajwill85/hri-3.0/internal/topic"
)

// ErrRunInProgress 同一时间只允许一轮聚合在执行
var ErrRunInProgress = errors.New("scheduler: a run is already in progress")

// Sink 接收每轮聚合结果，例如数据库、Redis 快照、S3
type Sink interface {
	SaveFeed(ctx context.Context, feed *processor.Feed) error
}

type Scheduler struct {
	cron       *cron.Cron
	fetchers   []collector.Fetcher
	aggregator *processor.Aggregator
	sinks      []Sink
	version    string
	running    atomic.Bool
	now        func() time.Time
}

func New(fetchers []collector.Fetcher, agg *processor.Aggregator, sinks ...Sink) *Scheduler {
	if agg == nil {
		agg = processor.NewAggregator(processor.DefaultLimit)
	}
	return &Scheduler{
		cron:       cron.New(),
		fetchers:   fetchers,
		aggregator: agg,
		sinks:      sinks,
		version:    config.Version,
		now:        config.Now,
	}
}

// NewFromConfig 按配置组装分类器、采集器和聚合器
func NewFromConfig(cfg *config.Config, client *http.Client, sinks ...Sink) *Scheduler {
	categorizer := topic.New(cfg.Taxonomy)
	n := collector.Normalizer{Classify: categorizer.Classify, Now: config.Now}
	fetchers := collector.FromConfig(cfg, n, client)
	return New(fetchers, processor.NewAggregator(cfg.Feed.Limit), sinks...)
}

// Schedule 注册定时触发；上一轮未结束时本次触发直接跳过
func (s *Scheduler) Schedule(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		if _, err := s.Run(context.Background()); err != nil {
			log.Printf("scheduled run error: %v", err)
		}
	})
	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Running 当前是否有一轮在执行
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// Run 并发抓取全部数据源，等待所有数据源结束（成功、失败或超时）后再聚合。
// 单个数据源最多占用自己的超时时间，整轮耗时取决于最慢的那个。
func (s *Scheduler) Run(ctx context.Context) (*processor.Feed, error) {
	if len(s.fetchers) == 0 {
		return nil, config.ErrNoSources
	}
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)

	runAt := s.now()
	log.Println("start collect job...")

	// 按注册顺序落位，合并顺序与完成先后无关
	results := make([][]collector.Article, len(s.fetchers))
	var wg sync.WaitGroup
	for i, f := range s.fetchers {
		wg.Add(1)
		go func(i int, f collector.Fetcher) {
			defer wg.Done()
			results[i] = collector.FetchWithTimeout(ctx, f, runAt)
		}(i, f)
	}
	wg.Wait()

	var counts processor.SourceCounts
	batches := make([][]collector.Article, 0, len(results))
	var discussion [][]collector.Article
	for i, f := range s.fetchers {
		if f.Kind() == collector.KindDiscussion {
			counts.Discussion += len(results[i])
			discussion = append(discussion, results[i])
			continue
		}
		counts.Syndication += len(results[i])
		batches = append(batches, results[i])
	}
	// 订阅源在前，讨论源在后
	batches = append(batches, discussion...)

	articles := s.aggregator.Aggregate(batches)

	finished := s.now()
	feed := &processor.Feed{
		Success:       true,
		RunID:         uuid.NewString(),
		Count:         len(articles),
		Articles:      articles,
		Sources:       counts,
		ExecutionTime: finished.Sub(runAt).Milliseconds(),
		Timestamp:     finished.UTC().Format(collector.ISOLayout),
		Version:       s.version,
	}

	for _, sink := range s.sinks {
		if err := sink.SaveFeed(ctx, feed); err != nil {
			log.Printf("warn: save feed %s error: %v", feed.RunID, err)
		}
	}

	log.Printf("collect job done: run=%s count=%d syndication=%d discussion=%d took=%dms",
		feed.RunID, feed.Count, counts.Syndication, counts.Discussion, feed.ExecutionTime)
	return feed, nil
}
