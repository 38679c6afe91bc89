package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revoker はログアウト済みトークンID（jti）を有効期限まで記録します。
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// MemoryRevoker はプロセス内で失効済みIDを保持します。
type MemoryRevoker struct {
	lock    sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewMemoryRevoker は MemoryRevoker を作成します。
func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke はトークンIDを until まで失効させます。
func (m *MemoryRevoker) Revoke(_ context.Context, tokenID string, until time.Time) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	now := m.now()
	for id, exp := range m.revoked {
		if now.After(exp) {
			delete(m.revoked, id)
		}
	}
	if until.After(now) {
		m.revoked[tokenID] = until
	}
	return nil
}

// IsRevoked はトークンIDが失効中かを返します。
func (m *MemoryRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	exp, ok := m.revoked[tokenID]
	if !ok {
		return false, nil
	}
	return m.now().Before(exp), nil
}

const revokedKeyPrefix = "token:revoked:"

// RedisRevoker は失効済みIDを TTL 付きキーとして Redis に保存します。
type RedisRevoker struct {
	rdb *redis.Client
}

// NewRedisRevoker は RedisRevoker を作成します。
func NewRedisRevoker(rdb *redis.Client) *RedisRevoker {
	return &RedisRevoker{rdb: rdb}
}

// Revoke は有効期限までの TTL 付きで失効キーを保存します。
func (r *RedisRevoker) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err()
}

// IsRevoked は失効キーが存在するかを返します。
func (r *RedisRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
