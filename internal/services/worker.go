package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/claridoc/backend/internal/config"
	"github.com/claridoc/backend/pkg/logger"
	"github.com/hibiken/asynq"
)

// Worker consumes invitation email tasks from Redis. It only exists
// when async mode is on; in sync mode the queue processes inline and
// no worker runs.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	processor func(context.Context, *EmailTask) error
	wg        sync.WaitGroup
	mu        sync.Mutex
	running   bool
}

func NewWorker(cfg *config.RedisConfig) *Worker {
	if !cfg.Enabled {
		return nil
	}

	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues:      map[string]int{"default": 1},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error().Err(err).Str("type", task.Type()).Msg("task failed")
			}),
		},
	)

	return &Worker{server: server, mux: asynq.NewServeMux()}
}

// SetProcessor wires the email delivery function. Must be called
// before Start.
func (w *Worker) SetProcessor(processor func(context.Context, *EmailTask) error) {
	w.processor = processor
}

func (w *Worker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	w.mux.HandleFunc(TaskTypeInvitationEmail, w.handleEmailTask)
	w.running = true
	w.wg.Add(1)

	go func() {
		defer w.wg.Done()
		logger.Info().Msg("email worker started")
		if err := w.server.Run(w.mux); err != nil {
			logger.Error().Err(err).Msg("email worker stopped unexpectedly")
		}
	}()
	return nil
}

// Stop drains in-flight tasks and shuts the server down.
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}

	w.server.Shutdown()
	w.running = false
	w.wg.Wait()
	logger.Info().Msg("email worker stopped")
}

func (w *Worker) handleEmailTask(ctx context.Context, t *asynq.Task) error {
	var task EmailTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		// Returning the error would retry a payload that can never
		// parse; drop it instead.
		logger.Error().Err(err).Msg("discarding malformed email task")
		return nil
	}
	if w.processor == nil {
		logger.Warn().Str("to", task.To).Msg("no email processor wired, dropping task")
		return nil
	}

	logger.Info().Str("to", task.To).Str("org", task.OrgName).Msg("delivering invitation email")
	return w.processor(ctx, &task)
}

var (
	globalWorker *Worker
	workerOnce   sync.Once
)

func InitWorker(cfg *config.RedisConfig) *Worker {
	workerOnce.Do(func() {
		globalWorker = NewWorker(cfg)
	})
	return globalWorker
}

func GetWorker() *Worker {
	return globalWorker
}
