package processor

import (
	"time"

	"github.com/ajwill85/hri-3.0/internal/collector"
)

// SourceCounts 每类采集器贡献的条数（去重前）
type SourceCounts struct {
	Syndication int `json:"syndication"`
	Discussion  int `json:"discussion"`
}

// Feed 一次聚合的输出，序列化后即对外的 JSON
type Feed struct {
	Success       bool                `json:"success"`
	RunID         string              `json:"runId"`
	Count         int                 `json:"count"`
	Articles      []collector.Article `json:"articles"`
	Sources       SourceCounts        `json:"sources"`
	ExecutionTime int64               `json:"executionTime"` // 毫秒
	Timestamp     string              `json:"timestamp"`
	Version       string              `json:"version"`
}

// Failure 整轮失败时的输出，不带任何部分结果
type Failure struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

func NewFailure(summary string, err error, now time.Time, version string) Failure {
	return Failure{
		Success:   false,
		Error:     summary,
		Message:   err.Error(),
		Timestamp: now.UTC().Format(collector.ISOLayout),
		Version:   version,
	}
}
