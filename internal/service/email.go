package service

import (
	"context"
	"fmt"

	"github.com/vibe-gaming/notes/internal/config"
	"github.com/vibe-gaming/notes/internal/queue/client"
	"github.com/vibe-gaming/notes/internal/queue/task"
	"github.com/vibe-gaming/notes/pkg/logger"

	"go.uber.org/zap"
)

type emailService struct {
	enqueuer   client.Enqueuer
	enabled    bool
	production bool
}

func newEmailService(enqueuer client.Enqueuer, cfg *config.Config) *emailService {
	return &emailService{
		enqueuer:   enqueuer,
		enabled:    cfg.Email.Enabled,
		production: cfg.IsProduction(),
	}
}

// SendVerificationCode schedules delivery of code to email. With delivery
// disabled the code is logged outside production so local sign-up works.
func (s *emailService) SendVerificationCode(ctx context.Context, email string, code string) error {
	if !s.enabled {
		if !s.production {
			logger.Info("email delivery disabled", zap.String("email", email), zap.String("code", code))
		}
		return nil
	}

	t, err := task.NewSendVerificationEmailTask(email, code)
	if err != nil {
		return fmt.Errorf("create send email task failed: %w", err)
	}

	if _, err := s.enqueuer.EnqueueContext(ctx, t); err != nil {
		return fmt.Errorf("enqueue send email task failed: %w", err)
	}

	return nil
}
