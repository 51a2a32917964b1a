package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/vibe-gaming/notes/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	Users              Users
	VerificationTokens VerificationTokens
	Notes              Notes
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		Users:              newUserRepository(db),
		VerificationTokens: newVerificationTokenRepository(db),
		Notes:              newNoteRepository(db),
	}
}

type Users interface {
	GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetVerifiedByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByEmailForUpdateWithTx(ctx context.Context, tx *sqlx.Tx, email string) (*domain.User, error)
	CreateWithTx(ctx context.Context, tx *sqlx.Tx, user *domain.User) error
	UpdateProfileWithTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, name string, dateOfBirth sql.NullTime) error
	MarkVerifiedWithTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error
	LinkProviderWithTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, provider domain.AuthProvider, providerID string) error
}

type VerificationTokens interface {
	GetByUserAndPurpose(ctx context.Context, userID uuid.UUID, purpose domain.VerificationPurpose) (*domain.VerificationToken, error)
	GetLiveByCode(ctx context.Context, userID uuid.UUID, purpose domain.VerificationPurpose, code string, now time.Time) (*domain.VerificationToken, error)
	CreateWithTx(ctx context.Context, tx *sqlx.Tx, token *domain.VerificationToken) error
	DeleteByUserAndPurposeWithTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, purpose domain.VerificationPurpose) error
	DeleteByIDWithTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type Notes interface {
	Create(ctx context.Context, note *domain.Note) error
	GetAllByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Note, error)
	GetOneByID(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*domain.Note, error)
	GetByTitle(ctx context.Context, userID uuid.UUID, title string) (*domain.Note, error)
	Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
}
