package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vibe-gaming/notes/internal/domain"
	"github.com/vibe-gaming/notes/internal/repository"

	"github.com/google/uuid"
)

type NoteInput struct {
	Title   string
	Content string
}

type noteService struct {
	noteRepository repository.Notes
	now            func() time.Time
}

func newNoteService(noteRepository repository.Notes, now func() time.Time) *noteService {
	return &noteService{
		noteRepository: noteRepository,
		now:            now,
	}
}

func (s *noteService) Create(ctx context.Context, userID uuid.UUID, input NoteInput) (*domain.Note, error) {
	if _, err := s.noteRepository.GetByTitle(ctx, userID, input.Title); err == nil {
		return nil, ErrNoteAlreadyExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get note by title failed: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate note id failed: %w", err)
	}

	now := s.now().UTC().Truncate(time.Second)
	note := &domain.Note{
		ID:        id,
		UserID:    userID,
		Title:     input.Title,
		Content:   input.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.noteRepository.Create(ctx, note); err != nil {
		if errors.Is(err, domain.ErrDuplicateEntry) {
			return nil, ErrNoteAlreadyExists
		}
		return nil, fmt.Errorf("create note failed: %w", err)
	}

	return note, nil
}

func (s *noteService) GetAll(ctx context.Context, userID uuid.UUID) ([]domain.Note, error) {
	notes, err := s.noteRepository.GetAllByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get notes failed: %w", err)
	}

	return notes, nil
}

func (s *noteService) GetByID(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*domain.Note, error) {
	note, err := s.noteRepository.GetOneByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("get note failed: %w", err)
	}

	return note, nil
}

func (s *noteService) Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	if err := s.noteRepository.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrNoteNotFound
		}
		return fmt.Errorf("delete note failed: %w", err)
	}

	return nil
}
