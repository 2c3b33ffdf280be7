package bootstrap

import (
	"context"
	"database/sql"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"krishisahay/internal/db/noop"
	"krishisahay/internal/db/postgres"
	redisdb "krishisahay/internal/db/redis"
	"krishisahay/internal/domain/assistant"
	"krishisahay/internal/platform/config"
	applog "krishisahay/internal/platform/log"
)

// SelectStore 按级联顺序选定持久化后端：PostgreSQL -> Redis -> 无。
// 选择在启动时一次完成，之后所有调用点只看到 assistant.Store。
func SelectStore(ctx context.Context, cfg *config.AppConfig) assistant.Store {
	if cfg.Database.URL != "" {
		if store := tryPostgres(ctx, cfg); store != nil {
			applog.Info("✅ Connected to PostgreSQL")
			return store
		}
	}
	if cfg.Redis.URL != "" {
		if store := tryRedis(ctx, cfg); store != nil {
			applog.Info("✅ Connected to Redis (PostgreSQL unavailable)")
			return store
		}
	}
	applog.Warn("⚠️  No store available, caching and feedback disabled")
	return noop.NewStore()
}

func tryPostgres(ctx context.Context, cfg *config.AppConfig) assistant.Store {
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		applog.Warn("⚠️  PostgreSQL open failed", "error", err)
		return nil
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetimeSeconds) * time.Second)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		applog.Warn("⚠️  PostgreSQL ping failed", "error", err)
		db.Close()
		return nil
	}

	store := postgres.NewStore(db)
	migrateCtx, migrateCancel := context.WithTimeout(ctx, 15*time.Second)
	defer migrateCancel()
	if err := store.EnsureTables(migrateCtx); err != nil {
		applog.Warn("⚠️  Failed to ensure tables", "error", err)
		db.Close()
		return nil
	}
	return store
}

func tryRedis(ctx context.Context, cfg *config.AppConfig) assistant.Store {
	opt, err := goredis.ParseURL(cfg.Redis.URL)
	if err != nil {
		applog.Warn("⚠️  Invalid REDIS_URL", "error", err)
		return nil
	}

	client := goredis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		applog.Warn("⚠️  Redis ping failed", "error", err)
		client.Close()
		return nil
	}
	return redisdb.NewStore(client, 0)
}
