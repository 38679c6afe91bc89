package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	taskTypeActivity = "activity:record"
	queueActivity    = "activity"
)

// Publisher はアクティビティを発行するインターフェースです。
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Discard はアクティビティを記録しない Publisher です（Redis 未設定時に使用）。
type Discard struct{}

// Publish は何もしません。
func (Discard) Publish(context.Context, Event) error { return nil }

// Manager はアクティビティの投入とワーカーでの記録を担います。
type Manager struct {
	client *asynq.Client
	server *asynq.Server
	mux    *asynq.ServeMux
	store  *Store
	logger *log.Logger
}

// NewManager は Manager を初期化します。
func NewManager(redisURL string, store *Store, logger *log.Logger) (*Manager, error) {
	if store == nil {
		return nil, errors.New("store is nil")
	}
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}

	server := asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				queueActivity: 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	manager := &Manager{
		client: asynq.NewClient(opt),
		server: server,
		mux:    mux,
		store:  store,
		logger: logger,
	}
	mux.HandleFunc(taskTypeActivity, manager.handleActivityTask)
	return manager, nil
}

// StartWorkers は Asynq サーバーをバックグラウンドで起動します。
func (m *Manager) StartWorkers() {
	go func() {
		if err := m.server.Run(m.mux); err != nil && !errors.Is(err, asynq.ErrServerClosed) {
			m.logger.Printf("asynq server stopped with error: %v", err)
		}
	}()
}

// Shutdown はサーバーとクライアントを閉じます。
func (m *Manager) Shutdown() error {
	m.server.Shutdown()
	return m.client.Close()
}

// Publish はアクティビティをキューに投入します。
func (m *Manager) Publish(ctx context.Context, event Event) error {
	if event.TaskID == 0 {
		return fmt.Errorf("event.TaskID is required")
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	task := asynq.NewTask(taskTypeActivity, body, asynq.Queue(queueActivity))
	if _, err := m.client.EnqueueContext(ctx, task, asynq.MaxRetry(3)); err != nil {
		return err
	}
	return nil
}

// List はタスクの最近のアクティビティを返します。
func (m *Manager) List(ctx context.Context, taskID int64, limit int) ([]Event, error) {
	return m.store.List(ctx, taskID, limit)
}

func (m *Manager) handleActivityTask(ctx context.Context, task *asynq.Task) error {
	var event Event
	if err := json.Unmarshal(task.Payload(), &event); err != nil {
		// 壊れたペイロードは再試行しても直らない
		return fmt.Errorf("decode activity: %v: %w", err, asynq.SkipRetry)
	}
	if event.TaskID == 0 {
		return fmt.Errorf("missing taskId in payload: %w", asynq.SkipRetry)
	}

	if event.Type == TypeTaskDeleted {
		return m.store.Delete(ctx, event.TaskID)
	}
	return m.store.Append(ctx, &event)
}
