package main

import (
	"log"

	redis "github.com/redis/go-redis/v9"

	"github.com/Benhap1/taskmanager/internal/auth"
	"github.com/Benhap1/taskmanager/internal/config"
	"github.com/Benhap1/taskmanager/internal/events"
)

// backend はログイン制限・トークン失効・アクティビティの実装をまとめたものです。
type backend struct {
	limiter   auth.LoginLimiter
	revoker   auth.Revoker
	publisher events.Publisher
	activity  *events.Manager

	redis *redis.Client
}

// setupBackend は REDIS_URL が設定されていれば Redis 実装を、無ければインメモリ実装を返します。
func setupBackend(cfg *config.Config, logger *log.Logger) (*backend, error) {
	if cfg.RedisURL == "" {
		logger.Printf("REDIS_URL is not set; using in-memory limiter and revocation, activity feed disabled")
		return &backend{
			limiter:   auth.NewMemoryLimiter(auth.DefaultLimitPolicy),
			revoker:   auth.NewMemoryRevoker(),
			publisher: events.Discard{},
		}, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)

	store := events.NewStore(rdb, cfg.ActivityTTL, cfg.ActivityLimit)
	manager, err := events.NewManager(cfg.RedisURL, store, logger)
	if err != nil {
		rdb.Close()
		return nil, err
	}
	manager.StartWorkers()

	return &backend{
		limiter:   auth.NewRedisLimiter(rdb, auth.DefaultLimitPolicy),
		revoker:   auth.NewRedisRevoker(rdb),
		publisher: manager,
		activity:  manager,
		redis:     rdb,
	}, nil
}

// Close はワーカーと Redis 接続を停止します。
func (b *backend) Close() {
	if b.activity != nil {
		if err := b.activity.Shutdown(); err != nil {
			log.Printf("Failed to shutdown activity workers: %v", err)
		}
	}
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			log.Printf("Failed to close redis client: %v", err)
		}
	}
}
