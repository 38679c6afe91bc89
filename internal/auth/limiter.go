package auth

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// LimitPolicy はログイン試行制限の設定です。
type LimitPolicy struct {
	MaxAttempts  int
	Window       time.Duration
	LockDuration time.Duration
}

// DefaultLimitPolicy は 15分間に5回失敗すると10分間ロックします。
var DefaultLimitPolicy = LimitPolicy{
	MaxAttempts:  5,
	Window:       15 * time.Minute,
	LockDuration: 10 * time.Minute,
}

// LoginLimiter はクライアント単位でログイン失敗を数え、ロックを判定します。
type LoginLimiter interface {
	// Check はロック中なら残り時間を返します。
	Check(ctx context.Context, key string) (time.Duration, error)
	// RecordFailure は失敗を記録し、ロックまでの残り回数を返します。
	RecordFailure(ctx context.Context, key string) (int, error)
	Reset(ctx context.Context, key string) error
}

type attemptState struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// MemoryLimiter はプロセス内のマップで試行回数を管理します。
type MemoryLimiter struct {
	policy   LimitPolicy
	lock     sync.Mutex
	attempts map[string]*attemptState
	now      func() time.Time
}

// NewMemoryLimiter は MemoryLimiter を作成します。
func NewMemoryLimiter(policy LimitPolicy) *MemoryLimiter {
	return &MemoryLimiter{
		policy:   policy,
		attempts: make(map[string]*attemptState),
		now:      time.Now,
	}
}

// Check はロック中なら残り時間を返します。
func (m *MemoryLimiter) Check(_ context.Context, key string) (time.Duration, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	state, ok := m.attempts[key]
	if !ok {
		return 0, nil
	}
	now := m.now()
	if now.After(state.lockedUntil) {
		return 0, nil
	}
	return state.lockedUntil.Sub(now), nil
}

// RecordFailure は失敗を1回記録し、ロックまでの残り回数を返します。
func (m *MemoryLimiter) RecordFailure(_ context.Context, key string) (int, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	now := m.now()
	state, ok := m.attempts[key]
	if !ok {
		state = &attemptState{firstAttempt: now}
		m.attempts[key] = state
	} else if state.count == 0 || now.Sub(state.firstAttempt) > m.policy.Window {
		state.count = 0
		state.firstAttempt = now
	}

	state.count++
	if state.count < m.policy.MaxAttempts {
		return m.policy.MaxAttempts - state.count, nil
	}
	// ロック後は回数を数え直す
	state.lockedUntil = now.Add(m.policy.LockDuration)
	state.count = 0
	return 0, nil
}

// Reset は失敗回数とロックを消去します。
func (m *MemoryLimiter) Reset(_ context.Context, key string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.attempts, key)
	return nil
}

const (
	attemptKeyPrefix = "login:attempts:"
	lockKeyPrefix    = "login:lock:"
)

// RedisLimiter は複数インスタンスで試行回数を共有するための Redis 実装です。
type RedisLimiter struct {
	rdb    *redis.Client
	policy LimitPolicy
}

// NewRedisLimiter は RedisLimiter を作成します。
func NewRedisLimiter(rdb *redis.Client, policy LimitPolicy) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, policy: policy}
}

// Check はロック中なら残り時間を返します。
func (r *RedisLimiter) Check(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := r.rdb.PTTL(ctx, lockKeyPrefix+key).Result()
	if err != nil {
		return 0, err
	}
	// キーが存在しない場合は負の値が返る
	if ttl <= 0 {
		return 0, nil
	}
	return ttl, nil
}

// RecordFailure は失敗を1回記録し、ロックまでの残り回数を返します。
func (r *RedisLimiter) RecordFailure(ctx context.Context, key string) (int, error) {
	attemptKey := attemptKeyPrefix + key
	n, err := r.rdb.Incr(ctx, attemptKey).Result()
	if err != nil {
		return 0, err
	}
	// 最初の失敗からウィンドウを数える
	if n == 1 {
		if err := r.rdb.Expire(ctx, attemptKey, r.policy.Window).Err(); err != nil {
			return 0, err
		}
	}

	count := int(n)
	if count >= r.policy.MaxAttempts {
		if err := r.rdb.Set(ctx, lockKeyPrefix+key, strconv.Itoa(count), r.policy.LockDuration).Err(); err != nil {
			return 0, err
		}
		if err := r.rdb.Del(ctx, attemptKey).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return 0, err
		}
		return 0, nil
	}
	return r.policy.MaxAttempts - count, nil
}

// Reset は失敗回数とロックを消去します。
func (r *RedisLimiter) Reset(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, attemptKeyPrefix+key, lockKeyPrefix+key).Err()
}
