package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrPageCacheMiss   = errors.New("page cache miss")
	ErrPageCacheFailed = errors.New("page cache failed")
)

const PageCachePrefix = "cache:page"

// CachedPage 整页响应快照
type CachedPage struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// PageCacheRepository 按请求路径缓存整页响应。只靠 TTL 过期或显式 Clear 失效，
// 帖子增删不会主动失效缓存。
type PageCacheRepository struct {
	TTL time.Duration
}

func pageKey(path string) string {
	return fmt.Sprintf("%s:%s", PageCachePrefix, path)
}

func (r *PageCacheRepository) Get(path string) (*CachedPage, error) {
	raw, err := Client.Get(context.Background(), pageKey(path)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrPageCacheMiss
	}
	if err != nil {
		return nil, ErrPageCacheFailed
	}
	var page CachedPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, ErrPageCacheFailed
	}
	return &page, nil
}

func (r *PageCacheRepository) Set(path string, page *CachedPage) error {
	raw, err := json.Marshal(page)
	if err != nil {
		return ErrPageCacheFailed
	}
	if err := Client.Set(context.Background(), pageKey(path), raw, r.TTL).Err(); err != nil {
		return ErrPageCacheFailed
	}
	return nil
}

// Clear 显式清除某个路径的缓存（幂等）
func (r *PageCacheRepository) Clear(path string) error {
	if err := Client.Del(context.Background(), pageKey(path)).Err(); err != nil {
		return ErrPageCacheFailed
	}
	return nil
}
