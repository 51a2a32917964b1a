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

const noteColumns = `id, user_id, title, content, created_at, updated_at`

type noteRepository struct {
	db *sqlx.DB
}

func newNoteRepository(db *sqlx.DB) *noteRepository {
	return &noteRepository{
		db: db,
	}
}

func (r *noteRepository) Create(ctx context.Context, note *domain.Note) error {
	const op = "repository.note.Create"

	const query = `
	INSERT INTO note (id, user_id, title, content, created_at, updated_at)
	VALUES (uuid_to_bin(?), uuid_to_bin(?), ?, ?, ?, ?)
	`

	res, err := r.db.ExecContext(ctx, query, note.ID, note.UserID, note.Title, note.Content, note.CreatedAt, note.UpdatedAt)
	if err != nil {
		if db.IsDuplicateEntry(err) {
			return domain.ErrDuplicateEntry
		}
		return fmt.Errorf("%s: insert note failed: %w", op, err)
	}

	return expectOneRow(op, res)
}

func (r *noteRepository) GetAllByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Note, error) {
	const op = "repository.note.GetAllByUserID"

	const query = `SELECT ` + noteColumns + ` FROM note WHERE user_id = uuid_to_bin(?) ORDER BY created_at DESC`

	notes := make([]domain.Note, 0)
	if err := r.db.SelectContext(ctx, &notes, query, userID); err != nil {
		return nil, fmt.Errorf("%s: select notes failed: %w", op, err)
	}

	return notes, nil
}

func (r *noteRepository) GetOneByID(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*domain.Note, error) {
	const op = "repository.note.GetOneByID"

	const query = `SELECT ` + noteColumns + ` FROM note WHERE id = uuid_to_bin(?) AND user_id = uuid_to_bin(?)`

	var note domain.Note
	if err := r.db.GetContext(ctx, &note, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select note failed: %w", op, err)
	}

	return &note, nil
}

func (r *noteRepository) GetByTitle(ctx context.Context, userID uuid.UUID, title string) (*domain.Note, error) {
	const op = "repository.note.GetByTitle"

	const query = `SELECT ` + noteColumns + ` FROM note WHERE user_id = uuid_to_bin(?) AND title = ?`

	var note domain.Note
	if err := r.db.GetContext(ctx, &note, query, userID, title); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select note by title failed: %w", op, err)
	}

	return &note, nil
}

func (r *noteRepository) Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	const op = "repository.note.Delete"

	const query = `DELETE FROM note WHERE id = uuid_to_bin(?) AND user_id = uuid_to_bin(?)`

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("%s: delete note failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}
