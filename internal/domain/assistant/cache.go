package assistant

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"krishisahay/internal/domain/language"
	applog "krishisahay/internal/platform/log"
)

// ResponseCache 按 (规范化查询, 语言) 缓存完整回答。存储故障一律
// 降级为未命中/丢弃写入，不向调用方冒泡。
type ResponseCache struct {
	store Store
}

func NewResponseCache(store Store) *ResponseCache {
	return &ResponseCache{store: store}
}

// NormalizeQuery 缓存键规范化：去首尾空白并小写化。
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// Get 查缓存。命中返回 provenance 为 cache 的结果。
func (c *ResponseCache) Get(ctx context.Context, query string, lang language.Code) (*AnswerResult, bool) {
	if c.store == nil {
		return nil, false
	}
	entry, err := c.store.GetCachedResponse(ctx, NormalizeQuery(query), string(lang))
	if err != nil {
		applog.Warn("cache lookup failed", "store", c.store.Name(), "error", err)
		return nil, false
	}
	if entry == nil {
		return nil, false
	}
	return &AnswerResult{
		Answer:   entry.Answer,
		Category: entry.Category,
		Source:   SourceCache,
		Language: lang,
	}, true
}

// Put 写缓存。失败只记日志。
func (c *ResponseCache) Put(ctx context.Context, query string, lang language.Code, answer, category string) {
	if c.store == nil {
		return
	}
	now := time.Now().UTC()
	entry := &CacheEntry{
		ID:         uuid.NewString(),
		Query:      strings.TrimSpace(query),
		QueryLower: NormalizeQuery(query),
		Language:   string(lang),
		Answer:     answer,
		Category:   category,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := c.store.CacheResponse(ctx, entry); err != nil {
		applog.Warn("cache write dropped", "store", c.store.Name(), "error", err)
	}
}
