package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vibe-gaming/notes/internal/db"
	"github.com/vibe-gaming/notes/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const userColumns = `id, email, name, date_of_birth, email_verified, provider, provider_id, created_at, updated_at`

type userRepository struct {
	db *sqlx.DB
}

func newUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const op = "repository.user.GetOneByID"

	const query = `SELECT ` + userColumns + ` FROM user WHERE id = uuid_to_bin(?)`

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select user by id failed: %w", op, err)
	}

	return &user, nil
}

func (r *userRepository) GetVerifiedByEmail(ctx context.Context, email string) (*domain.User, error) {
	const op = "repository.user.GetVerifiedByEmail"

	const query = `SELECT ` + userColumns + ` FROM user WHERE email = ? AND email_verified = 1`

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select verified user by email failed: %w", op, err)
	}

	return &user, nil
}

// GetByEmailForUpdateWithTx locks the user row (or the gap for a missing
// email) until tx ends.
func (r *userRepository) GetByEmailForUpdateWithTx(ctx context.Context, tx *sqlx.Tx, email string) (*domain.User, error) {
	const op = "repository.user.GetByEmailForUpdate"

	const query = `SELECT ` + userColumns + ` FROM user WHERE email = ? FOR UPDATE`

	var user domain.User
	if err := tx.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select user by email failed: %w", op, err)
	}

	return &user, nil
}

func (r *userRepository) CreateWithTx(ctx context.Context, tx *sqlx.Tx, user *domain.User) error {
	const op = "repository.user.Create"

	const query = `
	INSERT INTO user (id, email, name, date_of_birth, email_verified, provider, provider_id)
	VALUES (uuid_to_bin(?), ?, ?, ?, ?, ?, ?)
	`

	res, err := tx.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.DateOfBirth,
		user.EmailVerified,
		user.Provider,
		user.ProviderID,
	)
	if err != nil {
		if db.IsDuplicateEntry(err) {
			return domain.ErrDuplicateEntry
		}
		return fmt.Errorf("%s: insert user failed: %w", op, err)
	}

	return expectOneRow(op, res)
}

func (r *userRepository) UpdateProfileWithTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, name string, dateOfBirth sql.NullTime) error {
	const op = "repository.user.UpdateProfile"

	const query = `UPDATE user SET name = ?, date_of_birth = ? WHERE id = uuid_to_bin(?)`

	if _, err := tx.ExecContext(ctx, query, name, dateOfBirth, id); err != nil {
		return fmt.Errorf("%s: update user failed: %w", op, err)
	}

	return nil
}

func (r *userRepository) MarkVerifiedWithTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	const op = "repository.user.MarkVerified"

	const query = `UPDATE user SET email_verified = 1 WHERE id = uuid_to_bin(?)`

	if _, err := tx.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("%s: update user failed: %w", op, err)
	}

	return nil
}

func (r *userRepository) LinkProviderWithTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, provider domain.AuthProvider, providerID string) error {
	const op = "repository.user.LinkProvider"

	const query = `
	UPDATE user SET email_verified = 1, provider = ?, provider_id = ?
	WHERE id = uuid_to_bin(?)
	`

	if _, err := tx.ExecContext(ctx, query, provider, providerID, id); err != nil {
		if db.IsDuplicateEntry(err) {
			return domain.ErrDuplicateEntry
		}
		return fmt.Errorf("%s: update user failed: %w", op, err)
	}

	return nil
}

func expectOneRow(op string, res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	if rows != 1 {
		return fmt.Errorf("%s: expected 1 row affected, got %d: %w", op, rows, domain.ErrNoRowsAffected)
	}

	return nil
}
