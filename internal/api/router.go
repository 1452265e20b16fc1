package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ajwill85/hri-3.0/internal/collector"
	"github.com/ajwill85/hri-3.0/internal/config"
	"github.com/ajwill85/hri-3.0/internal/processor"
	"github.com/ajwill85/hri-3.0/internal/scheduler"
	"github.com/ajwill85/hri-3.0/internal/storage"
	"github.com/ajwill85/hri-3.0/internal/topic"
)

// FeedStore API 读取聚合结果所需的存储能力
type FeedStore interface {
	LatestFeed(ctx context.Context) (*processor.Feed, error)
	ListNews(ctx context.Context, topic string, limit int) ([]storage.News, error)
}

// Runner 手动触发一轮聚合
type Runner interface {
	Run(ctx context.Context) (*processor.Feed, error)
}

type Server struct {
	store      FeedStore
	runner     Runner
	categories *topic.Categorizer
}

func NewServer(store FeedStore, runner Runner, categories *topic.Categorizer) *Server {
	return &Server{store: store, runner: runner, categories: categories}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/news", s.listNews)
		v1.GET("/topics", s.listTopics)
		v1.POST("/runs", s.triggerRun)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": config.Version})
}

func (s *Server) listNews(c *gin.Context) {
	topicName := c.Query("topic")

	limitStr := c.DefaultQuery("limit", strconv.Itoa(processor.DefaultLimit))
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > processor.DefaultLimit {
		limit = processor.DefaultLimit
	}

	ctx := c.Request.Context()
	feed, err := s.store.LatestFeed(ctx)
	if err != nil {
		log.Printf("warn: read latest feed: %v", err)
	}
	if feed != nil {
		items := filterTopic(feed.Articles, topicName, limit)
		c.JSON(http.StatusOK, gin.H{
			"code":      "ok",
			"message":   "success",
			"runId":     feed.RunID,
			"timestamp": feed.Timestamp,
			"data":      items,
		})
		return
	}

	// Redis 中没有快照时回退到数据库
	rows, err := s.store.ListNews(ctx, topicName, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		})
		return
	}

	now := config.Now()
	items := make([]collector.Article, 0, len(rows))
	for _, n := range rows {
		items = append(items, collector.Article{
			ID:          n.ArticleID,
			Title:       n.Title,
			Summary:     n.Summary,
			URL:         n.URL,
			Source:      n.Source,
			PublishedAt: n.PublishedAt.UTC().Format(collector.ISOLayout),
			Topic:       n.Topic,
			TimeAgo:     collector.TimeAgo(n.PublishedAt, now),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    items,
	})
}

func filterTopic(list []collector.Article, topicName string, limit int) []collector.Article {
	out := make([]collector.Article, 0, limit)
	for _, a := range list {
		if len(out) >= limit {
			break
		}
		if topicName != "" && a.Topic != topicName {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (s *Server) listTopics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    s.categories.Topics(),
		"default": s.categories.Default(),
	})
}

func (s *Server) triggerRun(c *gin.Context) {
	// 客户端断开不影响本轮采集
	feed, err := s.runner.Run(context.WithoutCancel(c.Request.Context()))
	if errors.Is(err, scheduler.ErrRunInProgress) {
		c.JSON(http.StatusConflict, gin.H{
			"code":    "run_in_progress",
			"message": err.Error(),
		})
		return
	}
	if err != nil {
		log.Printf("manual run error: %v", err)
		c.JSON(http.StatusInternalServerError,
			processor.NewFailure("Failed to fetch news", err, config.Now(), config.Version))
		return
	}
	c.JSON(http.StatusOK, feed)
}
