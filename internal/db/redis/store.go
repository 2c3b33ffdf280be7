package redisdb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"krishisahay/internal/domain/assistant"
	applog "krishisahay/internal/platform/log"
)

const (
	cachePrefix    = "krishi:cache:"
	feedbackList   = "krishi:feedback"
	appFeedbackKey = "krishi:app_feedback"
)

// Store Redis 持久化实现，PostgreSQL 不可用时的次选。
// 缓存为带 TTL 的 JSON 值，反馈用列表保存。
type Store struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewStore 创建 Redis 存储。ttlSeconds <= 0 时缓存默认保留 7 天。
func NewStore(rdb *redis.Client, ttlSeconds int) *Store {
	ttl := 7 * 24 * time.Hour
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	return &Store{redis: rdb, ttl: ttl}
}

func cacheKey(queryLower, lang string) string {
	return cachePrefix + lang + ":" + queryLower
}

// GetCachedResponse 查缓存，纯读。未命中返回 (nil, nil)。
func (s *Store) GetCachedResponse(ctx context.Context, queryLower, lang string) (*assistant.CacheEntry, error) {
	key := cacheKey(queryLower, lang)
	data, err := s.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry assistant.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		applog.Warn("[Storage] Corrupt cache entry dropped", "key", key, "error", err)
		s.redis.Del(ctx, key)
		return nil, nil
	}
	return &entry, nil
}

// CacheResponse upsert：新建时 hit_count 为 1，同键覆盖时在原值上 +1 并
// 保留首次创建时间。同键并发写为 last-write-wins。
func (s *Store) CacheResponse(ctx context.Context, entry *assistant.CacheEntry) error {
	key := cacheKey(entry.QueryLower, entry.Language)

	stored := *entry
	stored.HitCount = 1
	if data, err := s.redis.Get(ctx, key).Bytes(); err == nil {
		var old assistant.CacheEntry
		if json.Unmarshal(data, &old) == nil {
			stored.ID = old.ID
			stored.HitCount = old.HitCount + 1
			stored.CreatedAt = old.CreatedAt
		}
	}
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.UpdatedAt = time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = stored.UpdatedAt
	}

	data, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	if err := s.redis.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// SaveFeedback 追加回答反馈
func (s *Store) SaveFeedback(ctx context.Context, rec *assistant.FeedbackRecord) error {
	stored := *rec
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("marshal feedback: %w", err)
	}
	if err := s.redis.LPush(ctx, feedbackList, data).Err(); err != nil {
		return fmt.Errorf("redis lpush: %w", err)
	}
	return nil
}

// SaveAppFeedback 追加应用反馈
func (s *Store) SaveAppFeedback(ctx context.Context, rec *assistant.AppFeedbackRecord) error {
	stored := *rec
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("marshal app feedback: %w", err)
	}
	if err := s.redis.LPush(ctx, appFeedbackKey, data).Err(); err != nil {
		return fmt.Errorf("redis lpush: %w", err)
	}
	return nil
}

// RecentAppFeedback 最新在前，返回最多 limit 条
func (s *Store) RecentAppFeedback(ctx context.Context, limit int) ([]assistant.AppFeedbackRecord, error) {
	items, err := s.redis.LRange(ctx, appFeedbackKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange: %w", err)
	}
	out := make([]assistant.AppFeedbackRecord, 0, len(items))
	for _, item := range items {
		var rec assistant.AppFeedbackRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			applog.Warn("[Storage] Corrupt app feedback entry skipped", "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Connected 健康检查
func (s *Store) Connected(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.redis.Ping(pingCtx).Err() == nil
}

func (s *Store) Name() string { return "redis" }

func (s *Store) Close() error { return s.redis.Close() }
