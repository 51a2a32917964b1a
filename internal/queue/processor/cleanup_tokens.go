package processor

import (
	"context"
	"fmt"

	"github.com/vibe-gaming/notes/internal/worker"

	"github.com/hibiken/asynq"
)

type cleanupTokensProcessor struct {
	workers *worker.Workers
}

func NewCleanupTokensProcessor(workers *worker.Workers) *cleanupTokensProcessor {
	return &cleanupTokensProcessor{
		workers: workers,
	}
}

func (p *cleanupTokensProcessor) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	if _, err := p.workers.TokenCleaner.DeleteExpired(ctx); err != nil {
		return fmt.Errorf("cleanup verification tokens failed: %w", err)
	}

	return nil
}
