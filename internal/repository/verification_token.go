package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vibe-gaming/notes/internal/db"
	"github.com/vibe-gaming/notes/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const verificationTokenColumns = `id, user_id, purpose, code, created_at, expires_at`

type verificationTokenRepository struct {
	db *sqlx.DB
}

func newVerificationTokenRepository(db *sqlx.DB) *verificationTokenRepository {
	return &verificationTokenRepository{
		db: db,
	}
}

// GetByUserAndPurpose returns the current token for (user, purpose) whether
// or not it has expired.
func (r *verificationTokenRepository) GetByUserAndPurpose(ctx context.Context, userID uuid.UUID, purpose domain.VerificationPurpose) (*domain.VerificationToken, error) {
	const op = "repository.verificationToken.GetByUserAndPurpose"

	const query = `
	SELECT ` + verificationTokenColumns + ` FROM verification_token
	WHERE user_id = uuid_to_bin(?) AND purpose = ?
	ORDER BY created_at DESC
	LIMIT 1
	`

	var token domain.VerificationToken
	if err := r.db.GetContext(ctx, &token, query, userID, purpose); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select verification token failed: %w", op, err)
	}

	return &token, nil
}

func (r *verificationTokenRepository) GetLiveByCode(ctx context.Context, userID uuid.UUID, purpose domain.VerificationPurpose, code string, now time.Time) (*domain.VerificationToken, error) {
	const op = "repository.verificationToken.GetLiveByCode"

	const query = `
	SELECT ` + verificationTokenColumns + ` FROM verification_token
	WHERE user_id = uuid_to_bin(?) AND purpose = ? AND code = ? AND expires_at > ?
	`

	var token domain.VerificationToken
	if err := r.db.GetContext(ctx, &token, query, userID, purpose, code, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select verification token failed: %w", op, err)
	}

	return &token, nil
}

func (r *verificationTokenRepository) CreateWithTx(ctx context.Context, tx *sqlx.Tx, token *domain.VerificationToken) error {
	const op = "repository.verificationToken.Create"

	const query = `
	INSERT INTO verification_token (id, user_id, purpose, code, created_at, expires_at)
	VALUES (uuid_to_bin(?), uuid_to_bin(?), ?, ?, ?, ?)
	`

	res, err := tx.ExecContext(ctx, query,
		token.ID,
		token.UserID,
		token.Purpose,
		token.Code,
		token.CreatedAt,
		token.ExpiresAt,
	)
	if err != nil {
		if db.IsDuplicateEntry(err) {
			return domain.ErrDuplicateEntry
		}
		return fmt.Errorf("%s: insert verification token failed: %w", op, err)
	}

	return expectOneRow(op, res)
}

func (r *verificationTokenRepository) DeleteByUserAndPurposeWithTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, purpose domain.VerificationPurpose) error {
	const op = "repository.verificationToken.DeleteByUserAndPurpose"

	const query = `DELETE FROM verification_token WHERE user_id = uuid_to_bin(?) AND purpose = ?`

	if _, err := tx.ExecContext(ctx, query, userID, purpose); err != nil {
		return fmt.Errorf("%s: delete verification tokens failed: %w", op, err)
	}

	return nil
}

// DeleteByIDWithTx returns domain.ErrNoRowsAffected when the token is already
// gone, which callers treat as a lost consumption race.
func (r *verificationTokenRepository) DeleteByIDWithTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	const op = "repository.verificationToken.DeleteByID"

	const query = `DELETE FROM verification_token WHERE id = uuid_to_bin(?)`

	res, err := tx.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: delete verification token failed: %w", op, err)
	}

	return expectOneRow(op, res)
}

func (r *verificationTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const op = "repository.verificationToken.DeleteExpired"

	const query = `DELETE FROM verification_token WHERE expires_at <= ?`

	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("%s: delete expired verification tokens failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	return rows, nil
}
