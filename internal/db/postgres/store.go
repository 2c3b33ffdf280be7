package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"krishisahay/internal/domain/assistant"
	applog "krishisahay/internal/platform/log"
)

// Store PostgreSQL 持久化实现：问答缓存 + 两类反馈。
type Store struct {
	db *sql.DB
}

// NewStore 创建 PostgreSQL 存储
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureTables 确保业务表存在
func (s *Store) EnsureTables(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS query_cache (
		id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		query       TEXT NOT NULL,
		query_lower TEXT NOT NULL,
		language    VARCHAR(10) NOT NULL DEFAULT 'en',
		answer      TEXT NOT NULL,
		category    VARCHAR(255),
		hit_count   INT NOT NULL DEFAULT 1,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (query_lower, language)
	);
	CREATE INDEX IF NOT EXISTS idx_query_cache_lookup ON query_cache(query_lower, language);

	CREATE TABLE IF NOT EXISTS user_feedback (
		id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		query      TEXT NOT NULL,
		answer     TEXT NOT NULL,
		feedback   VARCHAR(32) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS app_feedback (
		id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		rating     INT,
		message    TEXT NOT NULL,
		page       VARCHAR(255),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_app_feedback_created ON app_feedback(created_at DESC);
	`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// GetCachedResponse 按 (query_lower, language) 查缓存，纯读；计数只在
// CacheResponse 的 upsert 路径递增。未命中返回 (nil, nil)。
func (s *Store) GetCachedResponse(ctx context.Context, queryLower, lang string) (*assistant.CacheEntry, error) {
	var entry assistant.CacheEntry
	var category sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, query, query_lower, language, answer, category, hit_count, created_at, updated_at
		 FROM query_cache
		 WHERE query_lower = $1 AND language = $2
		 ORDER BY updated_at DESC LIMIT 1`,
		queryLower, lang,
	).Scan(&entry.ID, &entry.Query, &entry.QueryLower, &entry.Language, &entry.Answer,
		&category, &entry.HitCount, &entry.CreatedAt, &entry.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached response: %w", err)
	}
	entry.Category = category.String
	return &entry, nil
}

// CacheResponse upsert：同键已存在时覆盖回答并递增 hit_count（last-write-wins）。
func (s *Store) CacheResponse(ctx context.Context, entry *assistant.CacheEntry) error {
	id := entry.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO query_cache (id, query, query_lower, language, answer, category, hit_count)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), 1)
		 ON CONFLICT (query_lower, language) DO UPDATE SET
			answer     = EXCLUDED.answer,
			category   = EXCLUDED.category,
			hit_count  = query_cache.hit_count + 1,
			updated_at = NOW()`,
		id, entry.Query, entry.QueryLower, entry.Language, entry.Answer, entry.Category,
	)
	if err != nil {
		return fmt.Errorf("cache response: %w", err)
	}
	return nil
}

// SaveFeedback 追加一条回答反馈
func (s *Store) SaveFeedback(ctx context.Context, rec *assistant.FeedbackRecord) error {
	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_feedback (id, query, answer, feedback) VALUES ($1, $2, $3, $4)`,
		id, rec.Query, rec.Answer, rec.Feedback,
	)
	if err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}
	return nil
}

// SaveAppFeedback 追加一条应用反馈
func (s *Store) SaveAppFeedback(ctx context.Context, rec *assistant.AppFeedbackRecord) error {
	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	var rating sql.NullInt64
	if rec.Rating != nil {
		rating = sql.NullInt64{Int64: int64(*rec.Rating), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO app_feedback (id, rating, message, page) VALUES ($1, $2, $3, NULLIF($4, ''))`,
		id, rating, rec.Message, rec.Page,
	)
	if err != nil {
		return fmt.Errorf("save app feedback: %w", err)
	}
	return nil
}

// RecentAppFeedback 按创建时间倒序返回最多 limit 条应用反馈
func (s *Store) RecentAppFeedback(ctx context.Context, limit int) ([]assistant.AppFeedbackRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, rating, message, page, created_at
		 FROM app_feedback ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent app feedback: %w", err)
	}
	defer rows.Close()

	out := make([]assistant.AppFeedbackRecord, 0, limit)
	for rows.Next() {
		var rec assistant.AppFeedbackRecord
		var rating sql.NullInt64
		var page sql.NullString
		if err := rows.Scan(&rec.ID, &rating, &rec.Message, &page, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan app feedback: %w", err)
		}
		if rating.Valid {
			v := int(rating.Int64)
			rec.Rating = &v
		}
		rec.Page = page.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Connected 健康检查
func (s *Store) Connected(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.db.PingContext(pingCtx); err != nil {
		applog.Debug("[Storage] PostgreSQL ping failed", "error", err)
		return false
	}
	return true
}

func (s *Store) Name() string { return "postgres" }

func (s *Store) Close() error { return s.db.Close() }
