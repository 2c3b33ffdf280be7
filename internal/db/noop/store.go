// Package noop 提供无持久化的兜底存储：所有存储均不可用时服务仍可
// 启动，缓存永远未命中，反馈写入被静默丢弃。
package noop

import (
	"context"

	"krishisahay/internal/domain/assistant"
)

type Store struct{}

func NewStore() *Store { return &Store{} }

func (*Store) GetCachedResponse(context.Context, string, string) (*assistant.CacheEntry, error) {
	return nil, nil
}

func (*Store) CacheResponse(context.Context, *assistant.CacheEntry) error { return nil }

func (*Store) SaveFeedback(context.Context, *assistant.FeedbackRecord) error { return nil }

func (*Store) SaveAppFeedback(context.Context, *assistant.AppFeedbackRecord) error { return nil }

func (*Store) RecentAppFeedback(context.Context, int) ([]assistant.AppFeedbackRecord, error) {
	return []assistant.AppFeedbackRecord{}, nil
}

func (*Store) Connected(context.Context) bool { return false }

func (*Store) Name() string { return "none" }

func (*Store) Close() error { return nil }
