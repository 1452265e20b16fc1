package storage

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ajwill85/hri-3.0/internal/collector"
	"github.com/ajwill85/hri-3.0/internal/processor"
)

const (
	latestFeedKey = "hri:feed:latest"
	// 最新一轮结果在 Redis 中保留的时间，超过后 API 回退到数据库
	latestFeedTTL = 6 * time.Hour
	listCacheTTL  = 5 * time.Minute
)

// News 每篇去重后的文章落一行，URL 相同的文章在多轮之间只保留一行
type News struct {
	ID          string            `gorm:"primaryKey;size:40" json:"id"`
	ArticleID   string            `gorm:"size:128" json:"articleId"`
	Title       string            `gorm:"size:512" json:"title"`
	URL         string            `gorm:"size:1024;index" json:"url"`
	Source      string            `gorm:"size:128;index" json:"source"`
	Topic       string            `gorm:"size:64;index" json:"topic"`
	Summary     string            `gorm:"size:600" json:"summary"`
	PublishedAt time.Time         `gorm:"index" json:"publishedAt"`
	RunID       string            `gorm:"size:64;index" json:"runId"`
	ExtraData   datatypes.JSONMap `gorm:"type:jsonb" json:"extraData"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Store struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewStore(dsn, redisAddr string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&News{}, &PostedArticle{}); err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("warn: redis ping failed: %v", err)
	}

	return &Store{DB: db, Redis: rdb}, nil
}

func (s *Store) Close() error {
	if s.Redis != nil {
		_ = s.Redis.Close()
	}
	if s.DB != nil {
		if sqlDB, err := s.DB.DB(); err == nil {
			return sqlDB.Close()
		}
	}
	return nil
}

// newsKey URL 为 "#" 时没有唯一性，改用 URL+标题
func newsKey(a collector.Article) string {
	key := a.URL
	if key == "" || key == "#" {
		key = a.URL + "|" + processor.DedupKey(a.Title)
	}
	h := sha1.New()
	h.Write([]byte(key))
	return hex.EncodeToString(h.Sum(nil))
}

// toValidUTF8 将字符串规范为合法 UTF-8，避免 PostgreSQL invalid byte sequence 错误
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

// SaveFeed 写入一轮聚合结果：文章入库（按 key 幂等），整份结果写入 Redis 作为最新快照
func (s *Store) SaveFeed(ctx context.Context, feed *processor.Feed) error {
	db := s.DB.WithContext(ctx)
	for _, a := range feed.Articles {
		published := processor.ParsePublished(a.PublishedAt)
		n := &News{
			ID:          newsKey(a),
			ArticleID:   a.ID,
			Title:       toValidUTF8(a.Title),
			URL:         a.URL,
			Source:      a.Source,
			Topic:       a.Topic,
			Summary:     toValidUTF8(a.Summary),
			PublishedAt: published,
			RunID:       feed.RunID,
			ExtraData:   datatypes.JSONMap(a.Extra),
		}

		if err := db.Where("id = ?", n.ID).FirstOrCreate(n).Error; err != nil {
			return fmt.Errorf("storage: save news %s: %w", a.URL, err)
		}
		// 已存在时刷新可能变化的字段
		_ = db.Model(n).Updates(map[string]any{
			"title":        n.Title,
			"summary":      n.Summary,
			"topic":        a.Topic,
			"published_at": published,
			"run_id":       feed.RunID,
		}).Error
	}

	if s.Redis == nil {
		return nil
	}
	bs, err := json.Marshal(feed)
	if err != nil {
		return fmt.Errorf("storage: marshal feed: %w", err)
	}
	if err := s.Redis.Set(ctx, latestFeedKey, bs, latestFeedTTL).Err(); err != nil {
		return fmt.Errorf("storage: cache latest feed: %w", err)
	}
	return nil
}

// LatestFeed 读取最新快照；不存在时返回 (nil, nil)
func (s *Store) LatestFeed(ctx context.Context) (*processor.Feed, error) {
	if s.Redis == nil {
		return nil, nil
	}
	bs, err := s.Redis.Get(ctx, latestFeedKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var feed processor.Feed
	if err := json.Unmarshal(bs, &feed); err != nil {
		return nil, err
	}
	return &feed, nil
}

// ListNews 按主题返回最近入库的文章，结果在 Redis 缓存 5 分钟
func (s *Store) ListNews(ctx context.Context, topic string, limit int) ([]News, error) {
	if limit <= 0 || limit > 500 {
		limit = processor.DefaultLimit
	}

	cacheKey := fmt.Sprintf("hri:news:list:%s:%d", topic, limit)
	if s.Redis != nil {
		if bs, err := s.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached []News
			if err := json.Unmarshal(bs, &cached); err == nil {
				return cached, nil
			}
		}
	}

	var list []News
	db := s.DB.WithContext(ctx).Model(&News{})
	if topic != "" {
		db = db.Where("topic = ?", topic)
	}
	if err := db.Order("published_at DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}

	if s.Redis != nil && len(list) > 0 {
		if bs, err := json.Marshal(list); err == nil {
			_ = s.Redis.Set(ctx, cacheKey, bs, listCacheTTL).Err()
		}
	}
	return list, nil
}
