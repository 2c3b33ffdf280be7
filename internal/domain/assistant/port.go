package assistant

import (
	"context"
	"time"
)

// CacheEntry 问答缓存记录。QueryLower 为小写去空白后的查询，
// 与语言码共同构成查找键。
type CacheEntry struct {
	ID         string    `json:"id"`
	Query      string    `json:"query"`
	QueryLower string    `json:"query_lower"`
	Language   string    `json:"language"`
	Answer     string    `json:"answer"`
	Category   string    `json:"category"`
	HitCount   int       `json:"hit_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FeedbackRecord 针对某次回答的用户反馈。
type FeedbackRecord struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	Answer    string    `json:"answer"`
	Feedback  string    `json:"feedback"` // positive | negative
	CreatedAt time.Time `json:"created_at"`
}

// AppFeedbackRecord 针对应用本身的反馈，评分与留言至少其一。
type AppFeedbackRecord struct {
	ID        string    `json:"id"`
	Rating    *int      `json:"rating,omitempty"` // 1..5
	Message   string    `json:"message,omitempty"`
	Page      string    `json:"page,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store 持久化端口。缓存未命中返回 (nil, nil)；实现自行保证
// 同键并发写入的收敛（last-write-wins 即可）。
type Store interface {
	// GetCachedResponse 按 (query_lower, language) 查找，纯读不产生副作用。
	GetCachedResponse(ctx context.Context, queryLower, lang string) (*CacheEntry, error)
	// CacheResponse upsert：新建时 hit_count 为 1，同键覆盖时在原值上 +1，
	// 回答与分类以后写为准。入参的 HitCount 由实现接管。
	CacheResponse(ctx context.Context, entry *CacheEntry) error
	SaveFeedback(ctx context.Context, rec *FeedbackRecord) error
	SaveAppFeedback(ctx context.Context, rec *AppFeedbackRecord) error
	// RecentAppFeedback 按创建时间倒序返回最多 limit 条。
	RecentAppFeedback(ctx context.Context, limit int) ([]AppFeedbackRecord, error)

	// Connected 健康检查用，不得阻塞超过调用方 ctx 的期限。
	Connected(ctx context.Context) bool
	Name() string
	Close() error
}
