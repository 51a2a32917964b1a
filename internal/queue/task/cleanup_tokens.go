package task

import (
	"github.com/hibiken/asynq"
)

const (
	CleanupVerificationTokensTaskName = "cleanupVerificationTokens"
	MaintenanceQueueName              = "maintenance"
)

// NewCleanupVerificationTokensTask carries no payload; the worker deletes
// every row expired at processing time.
func NewCleanupVerificationTokensTask() *asynq.Task {
	return asynq.NewTask(
		CleanupVerificationTokensTaskName,
		nil,
		asynq.MaxRetry(1),
		asynq.Queue(MaintenanceQueueName),
	)
}
