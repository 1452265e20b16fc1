package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/ajwill85/hri-3.0/internal/config"
)

// ErrAlreadyPosted 台账只追加，同一个 URL 第二次写入会返回该错误
var ErrAlreadyPosted = errors.New("storage: article already recorded as posted")

// PostedRecord 已发布台账中的一条记录，key 为文章 URL
type PostedRecord struct {
	ArticleURL string    `json:"articleUrl"`
	Title      string    `json:"title"`
	Category   string    `json:"category"`
	Source     string    `json:"source"`
	PostedAt   time.Time `json:"postedAt"`
}

// Ledger 已发布台账：只读查询与追加写入，不支持更新和删除
type Ledger interface {
	Get(ctx context.Context, articleURL string) (PostedRecord, bool, error)
	Put(ctx context.Context, rec PostedRecord) error
}

// NewLedger 根据配置选择台账后端；postgres / redis 复用 Store 的连接
func NewLedger(ctx context.Context, cfg config.LedgerConfig, store *Store) (Ledger, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryLedger(), nil
	case "postgres":
		if store == nil {
			return nil, fmt.Errorf("storage: postgres ledger needs a store")
		}
		return NewGormLedger(store.DB), nil
	case "redis":
		if store == nil || store.Redis == nil {
			return nil, fmt.Errorf("storage: redis ledger needs a store")
		}
		return NewRedisLedger(store.Redis), nil
	case "dynamodb", "":
		return NewDynamoLedgerFromConfig(ctx, cfg)
	default:
		return nil, fmt.Errorf("storage: unknown ledger backend %q", cfg.Backend)
	}
}

// ---------- memory ----------

// MemoryLedger 进程内台账，用于测试和本地试跑
type MemoryLedger struct {
	mu      sync.RWMutex
	records map[string]PostedRecord
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{records: make(map[string]PostedRecord)}
}

func (m *MemoryLedger) Get(_ context.Context, articleURL string) (PostedRecord, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[articleURL]
	return rec, ok, nil
}

func (m *MemoryLedger) Put(_ context.Context, rec PostedRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[rec.ArticleURL]; ok {
		return ErrAlreadyPosted
	}
	m.records[rec.ArticleURL] = rec
	return nil
}

func (m *MemoryLedger) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// ---------- postgres (gorm) ----------

// PostedArticle 台账表
type PostedArticle struct {
	ArticleURL string    `gorm:"primaryKey;size:1024"`
	Title      string    `gorm:"size:512"`
	Category   string    `gorm:"size:64;index"`
	Source     string    `gorm:"size:128"`
	PostedAt   time.Time `gorm:"index"`
}

type GormLedger struct {
	db *gorm.DB
}

func NewGormLedger(db *gorm.DB) *GormLedger {
	return &GormLedger{db: db}
}

func (g *GormLedger) Get(ctx context.Context, articleURL string) (PostedRecord, bool, error) {
	var row PostedArticle
	err := g.db.WithContext(ctx).Where("article_url = ?", articleURL).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return PostedRecord{}, false, nil
	}
	if err != nil {
		return PostedRecord{}, false, err
	}
	return PostedRecord{
		ArticleURL: row.ArticleURL,
		Title:      row.Title,
		Category:   row.Category,
		Source:     row.Source,
		PostedAt:   row.PostedAt,
	}, true, nil
}

// Put 直接 Create，主键冲突由数据库拒绝
func (g *GormLedger) Put(ctx context.Context, rec PostedRecord) error {
	row := PostedArticle{
		ArticleURL: rec.ArticleURL,
		Title:      toValidUTF8(rec.Title),
		Category:   rec.Category,
		Source:     rec.Source,
		PostedAt:   rec.PostedAt,
	}
	return g.db.WithContext(ctx).Create(&row).Error
}
