package asynqserver

import (
	"fmt"

	"github.com/vibe-gaming/notes/internal/config"
	"github.com/vibe-gaming/notes/internal/queue/client"
	"github.com/vibe-gaming/notes/internal/queue/processor"
	"github.com/vibe-gaming/notes/internal/queue/task"
	"github.com/vibe-gaming/notes/internal/worker"
	"github.com/vibe-gaming/notes/pkg/logger"

	"github.com/hibiken/asynq"
)

func New(cfg *config.Config, workers *worker.Workers) (*asynq.Server, *asynq.ServeMux) {
	mux, queues := getQueues(workers)
	srv := asynq.NewServer(
		client.RedisOptions(cfg.Cache),
		asynq.Config{
			Concurrency: cfg.Queue.Concurrency,
			Logger:      logger.Logger().Sugar(),
			LogLevel:    asynq.ErrorLevel,
			Queues:      queues,
		},
	)

	return srv, mux
}

// NewScheduler enqueues the periodic verification token cleanup.
func NewScheduler(cfg *config.Config) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(client.RedisOptions(cfg.Cache), &asynq.SchedulerOpts{
		Logger:   logger.Logger().Sugar(),
		LogLevel: asynq.ErrorLevel,
	})

	if _, err := scheduler.Register(cfg.Queue.CleanupCron, task.NewCleanupVerificationTokensTask()); err != nil {
		return nil, fmt.Errorf("register cleanup task failed: %w", err)
	}

	return scheduler, nil
}

func getQueues(workers *worker.Workers) (*asynq.ServeMux, map[string]int) {
	mux := asynq.NewServeMux()
	queues := map[string]int{
		task.MaintenanceQueueName: 1,
	}

	mux.Handle(task.CleanupVerificationTokensTaskName, processor.NewCleanupTokensProcessor(workers))
	if workers.EmailSender != nil {
		mux.Handle(task.SendVerificationEmailTaskName, processor.NewSendEmailProcessor(workers))
		queues[task.EmailQueueName] = 3
	}

	return mux, queues
}
