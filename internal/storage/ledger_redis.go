package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const postedKeyPrefix = "hri:posted:"

// RedisLedger 每条记录一个 key，不设置过期时间
type RedisLedger struct {
	client redis.Cmdable
}

func NewRedisLedger(client redis.Cmdable) *RedisLedger {
	return &RedisLedger{client: client}
}

func postedKey(articleURL string) string {
	return postedKeyPrefix + articleURL
}

func (r *RedisLedger) Get(ctx context.Context, articleURL string) (PostedRecord, bool, error) {
	bs, err := r.client.Get(ctx, postedKey(articleURL)).Bytes()
	if err == redis.Nil {
		return PostedRecord{}, false, nil
	}
	if err != nil {
		return PostedRecord{}, false, err
	}
	var rec PostedRecord
	if err := json.Unmarshal(bs, &rec); err != nil {
		return PostedRecord{}, false, fmt.Errorf("storage: decode posted record: %w", err)
	}
	return rec, true, nil
}

// Put 使用 SETNX 保证只追加
func (r *RedisLedger) Put(ctx context.Context, rec PostedRecord) error {
	bs, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	ok, err := r.client.SetNX(ctx, postedKey(rec.ArticleURL), bs, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrAlreadyPosted
	}
	return nil
}
