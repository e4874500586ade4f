package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/claridoc/backend/internal/config"
	"github.com/claridoc/backend/pkg/logger"
	"github.com/hibiken/asynq"
)

const (
	TaskTypeInvitationEmail = "email:invitation"
)

// EmailTask is an invitation notification to deliver.
type EmailTask struct {
	To         string    `json:"to"`
	OrgName    string    `json:"org_name"`
	Role       string    `json:"role"`
	InviteLink string    `json:"invite_link"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// TaskQueue defines the interface for email task processing
type TaskQueue interface {
	// Enqueue adds a task to the queue
	Enqueue(task *EmailTask) error
	// IsAsync returns true if queue processes tasks asynchronously
	IsAsync() bool
	// Close gracefully shuts down the queue
	Close() error
}

// Global task queue instance
var (
	globalTaskQueue TaskQueue
	taskQueueOnce   sync.Once
)

// InitTaskQueue initializes the global task queue based on config
func InitTaskQueue(cfg *config.Config) TaskQueue {
	taskQueueOnce.Do(func() {
		if cfg.Redis.Enabled {
			queue, err := NewAsyncQueue(&cfg.Redis)
			if err != nil {
				logger.Warnf("[TaskQueue] Redis unavailable, falling back to sync mode: %v", err)
				globalTaskQueue = NewSyncQueue()
			} else {
				logger.Infof("[TaskQueue] Async queue initialized with Redis at %s", cfg.Redis.Addr)
				globalTaskQueue = queue
			}
		} else {
			logger.Infof("[TaskQueue] Sync queue initialized (Redis disabled)")
			globalTaskQueue = NewSyncQueue()
		}
	})
	return globalTaskQueue
}

// GetTaskQueue returns the global task queue instance
func GetTaskQueue() TaskQueue {
	return globalTaskQueue
}

// AsyncQueue implements TaskQueue using asynq (Redis-based)
type AsyncQueue struct {
	client *asynq.Client
}

// NewAsyncQueue creates a new Redis-based async queue
func NewAsyncQueue(cfg *config.RedisConfig) (*AsyncQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	// Test connection by pinging Redis
	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()

	_, err := inspector.Queues()
	if err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncQueue{client: client}, nil
}

// Enqueue adds an email task to the async queue
func (q *AsyncQueue) Enqueue(task *EmailTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	t := asynq.NewTask(TaskTypeInvitationEmail, payload)
	info, err := q.client.Enqueue(t,
		asynq.Queue("default"),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return err
	}

	logger.Infof("[AsyncQueue] Task enqueued: id=%s, queue=%s", info.ID, info.Queue)
	return nil
}

// IsAsync returns true for async queue
func (q *AsyncQueue) IsAsync() bool {
	return true
}

// Close closes the async queue client
func (q *AsyncQueue) Close() error {
	return q.client.Close()
}

// SyncQueue implements TaskQueue with synchronous processing (no Redis)
type SyncQueue struct {
	processor func(context.Context, *EmailTask) error
}

// NewSyncQueue creates a queue that processes tasks inline.
func NewSyncQueue() *SyncQueue {
	return &SyncQueue{}
}

// SetProcessor sets the function invoked for each task.
func (q *SyncQueue) SetProcessor(processor func(context.Context, *EmailTask) error) {
	q.processor = processor
}

// Enqueue processes the task immediately in the calling goroutine.
func (q *SyncQueue) Enqueue(task *EmailTask) error {
	if q.processor == nil {
		logger.Warnf("[SyncQueue] no processor set, dropping task for %s", task.To)
		return nil
	}
	return q.processor(context.Background(), task)
}

// IsAsync returns false for sync queue
func (q *SyncQueue) IsAsync() bool {
	return false
}

// Close is a no-op for sync queue
func (q *SyncQueue) Close() error {
	return nil
}
