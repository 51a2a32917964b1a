package service

import (
	"context"
	"time"

	"github.com/vibe-gaming/notes/internal/config"
	"github.com/vibe-gaming/notes/internal/db"
	"github.com/vibe-gaming/notes/internal/domain"
	"github.com/vibe-gaming/notes/internal/oauth"
	"github.com/vibe-gaming/notes/internal/queue/client"
	"github.com/vibe-gaming/notes/internal/repository"
	"github.com/vibe-gaming/notes/pkg/auth"
	"github.com/vibe-gaming/notes/pkg/otp"

	"github.com/google/uuid"
)

type Services struct {
	Auth  Auth
	Users Users
	Notes Notes
}

type Deps struct {
	Config           *config.Config
	TokenManager     auth.TokenManager
	OtpGenerator     otp.Generator
	Repos            *repository.Repositories
	Transactor       db.Transactor
	IdentityProvider oauth.IdentityProvider
	OAuthStates      oauth.StateStore
	Enqueuer         client.Enqueuer
	// Now defaults to time.Now.
	Now func() time.Time
}

func NewServices(deps Deps) *Services {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	emails := newEmailService(deps.Enqueuer, deps.Config)

	return &Services{
		Auth: newAuthService(deps.Repos.Users,
			deps.Repos.VerificationTokens,
			deps.Transactor,
			deps.TokenManager,
			deps.OtpGenerator,
			deps.IdentityProvider,
			deps.OAuthStates,
			emails,
			deps.Config.Auth,
			now,
		),
		Users: newUserService(deps.Repos.Users),
		Notes: newNoteService(deps.Repos.Notes, now),
	}
}

type Auth interface {
	Signup(ctx context.Context, input SignupInput) (*PendingVerification, error)
	Signin(ctx context.Context, email string) (*PendingVerification, error)
	ResendCode(ctx context.Context, pendingToken string) error
	VerifyCode(ctx context.Context, pendingToken string, code string) (*Session, error)
	OAuthLoginURL(ctx context.Context) (*OAuthRedirect, error)
	OAuthCallback(ctx context.Context, input OAuthCallbackInput) (*Session, error)
	Authenticate(token string) (uuid.UUID, error)
}

type Users interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type Notes interface {
	Create(ctx context.Context, userID uuid.UUID, input NoteInput) (*domain.Note, error)
	GetAll(ctx context.Context, userID uuid.UUID) ([]domain.Note, error)
	GetByID(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*domain.Note, error)
	Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
}

type Emails interface {
	SendVerificationCode(ctx context.Context, email string, code string) error
}
