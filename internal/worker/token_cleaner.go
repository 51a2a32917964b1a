package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/vibe-gaming/notes/internal/repository"
	"github.com/vibe-gaming/notes/pkg/logger"

	"go.uber.org/zap"
)

type tokenCleaner struct {
	tokenRepository repository.VerificationTokens
	now             func() time.Time
}

func newTokenCleaner(tokenRepository repository.VerificationTokens, now func() time.Time) *tokenCleaner {
	return &tokenCleaner{
		tokenRepository: tokenRepository,
		now:             now,
	}
}

// DeleteExpired removes verification codes that can no longer be used.
func (c *tokenCleaner) DeleteExpired(ctx context.Context) (int64, error) {
	deleted, err := c.tokenRepository.DeleteExpired(ctx, c.now())
	if err != nil {
		return 0, fmt.Errorf("delete expired verification tokens failed: %w", err)
	}

	if deleted > 0 {
		logger.Info("expired verification tokens deleted", zap.Int64("count", deleted))
	}

	return deleted, nil
}
