package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	activityKeyPrefix = "activity:task:"
)

// Store はタスクごとのアクティビティを Redis のリストに保存します。
type Store struct {
	rdb   *redis.Client
	ttl   time.Duration
	limit int
}

// NewStore は Store を作成します。limit 件を超えた古いアクティビティは捨てます。
func NewStore(rdb *redis.Client, ttl time.Duration, limit int) *Store {
	if limit <= 0 {
		limit = 100
	}
	return &Store{
		rdb:   rdb,
		ttl:   ttl,
		limit: limit,
	}
}

// Append はアクティビティを先頭に追加します。
func (s *Store) Append(ctx context.Context, event *Event) error {
	if event == nil {
		return fmt.Errorf("event is nil")
	}
	if event.TaskID == 0 {
		return fmt.Errorf("event.TaskID is required")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	key := activityKey(event.TaskID)
	tx := s.rdb.TxPipeline()
	tx.LPush(ctx, key, payload)
	tx.LTrim(ctx, key, 0, int64(s.limit-1))
	if s.ttl > 0 {
		tx.Expire(ctx, key, s.ttl)
	}
	_, err = tx.Exec(ctx)
	return err
}

// List は新しい順にアクティビティを返します。
func (s *Store) List(ctx context.Context, taskID int64, limit int) ([]Event, error) {
	if limit <= 0 || limit > s.limit {
		limit = s.limit
	}
	items, err := s.rdb.LRange(ctx, activityKey(taskID), 0, int64(limit-1)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []Event{}, nil
		}
		return nil, err
	}

	events := make([]Event, 0, len(items))
	for _, item := range items {
		var event Event
		if err := json.Unmarshal([]byte(item), &event); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

// Delete はタスクのアクティビティをまとめて削除します。
func (s *Store) Delete(ctx context.Context, taskID int64) error {
	return s.rdb.Del(ctx, activityKey(taskID)).Err()
}

func activityKey(taskID int64) string {
	return activityKeyPrefix + strconv.FormatInt(taskID, 10)
}
