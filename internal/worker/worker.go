package worker

import (
	"context"
	"time"

	"github.com/vibe-gaming/notes/internal/config"
	"github.com/vibe-gaming/notes/internal/repository"
	emailProvider "github.com/vibe-gaming/notes/pkg/email"
)

type Workers struct {
	// EmailSender is nil when email delivery is disabled.
	EmailSender  EmailSender
	TokenCleaner TokenCleaner
}

type Deps struct {
	Repos         *repository.Repositories
	EmailProvider emailProvider.Sender
	Config        *config.Config
	Now           func() time.Time
}

type EmailSender interface {
	SendUserVerificationEmail(ctx context.Context, email string, verificationCode string) error
}

type TokenCleaner interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

func NewWorkers(deps Deps) *Workers {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	workers := &Workers{
		TokenCleaner: newTokenCleaner(deps.Repos.VerificationTokens, now),
	}
	if deps.EmailProvider != nil {
		workers.EmailSender = newEmailSender(deps.EmailProvider, deps.Config.Email)
	}

	return workers
}
