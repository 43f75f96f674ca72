// Package cache 用 Redis 缓存已富化的记录，避免同一 URL 重复调用 LLM
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/config"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/model"
)

const keyPrefix = "risk_radar:record:"

// kv 缓存用到的 Redis 命令，*redis.Client 满足该接口
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RecordCache 按 URL 缓存 EnrichedRecord
type RecordCache struct {
	rdb kv
	ttl time.Duration
}

// New 连接 Redis；Addr 为空时返回 nil，表示不启用缓存
func New(ctx context.Context, cfg config.RedisConfig) (*RecordCache, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return newRecordCache(rdb, time.Duration(cfg.TTL)*time.Second), nil
}

func newRecordCache(rdb kv, ttl time.Duration) *RecordCache {
	return &RecordCache{rdb: rdb, ttl: ttl}
}

// Get 未命中时返回 nil, nil
func (c *RecordCache) Get(ctx context.Context, url string) (*model.EnrichedRecord, error) {
	data, err := c.rdb.Get(ctx, Key(url)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec model.EnrichedRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode cached record %s: %w", url, err)
	}
	return &rec, nil
}

// Set 写入记录，过期时间为配置的 TTL
func (c *RecordCache) Set(ctx context.Context, rec model.EnrichedRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, Key(rec.URL), data, c.ttl).Err()
}

// Key URL 对应的缓存键
func Key(url string) string {
	sum := sha1.Sum([]byte(url))
	return keyPrefix + hex.EncodeToString(sum[:])
}
