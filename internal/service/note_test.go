package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotes_CreateAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	note, err := f.services.Notes.Create(ctx, userID, NoteInput{Title: "groceries", Content: "milk, eggs"})
	require.NoError(t, err)
	assert.Equal(t, userID, note.UserID)
	assert.Equal(t, note.CreatedAt, note.UpdatedAt)

	got, err := f.services.Notes.GetByID(ctx, userID, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "milk, eggs", got.Content)

	_, err = f.services.Notes.GetByID(ctx, uuid.New(), note.ID)
	require.ErrorIs(t, err, ErrNoteNotFound)
}

func TestNotes_Create_DuplicateTitle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := f.services.Notes.Create(ctx, userID, NoteInput{Title: "groceries", Content: "milk"})
	require.NoError(t, err)

	_, err = f.services.Notes.Create(ctx, userID, NoteInput{Title: "groceries", Content: "eggs"})
	require.ErrorIs(t, err, ErrNoteAlreadyExists)

	_, err = f.services.Notes.Create(ctx, uuid.New(), NoteInput{Title: "groceries", Content: "eggs"})
	require.NoError(t, err)
}

func TestNotes_GetAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	notes, err := f.services.Notes.GetAll(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, notes)

	_, err = f.services.Notes.Create(ctx, userID, NoteInput{Title: "first", Content: "1"})
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = f.services.Notes.Create(ctx, userID, NoteInput{Title: "second", Content: "2"})
	require.NoError(t, err)
	_, err = f.services.Notes.Create(ctx, uuid.New(), NoteInput{Title: "foreign", Content: "3"})
	require.NoError(t, err)

	notes, err = f.services.Notes.GetAll(ctx, userID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "second", notes[0].Title)
	assert.Equal(t, "first", notes[1].Title)
}

func TestNotes_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	note, err := f.services.Notes.Create(ctx, userID, NoteInput{Title: "groceries", Content: "milk"})
	require.NoError(t, err)

	require.ErrorIs(t, f.services.Notes.Delete(ctx, uuid.New(), note.ID), ErrNoteNotFound)
	require.NoError(t, f.services.Notes.Delete(ctx, userID, note.ID))
	require.ErrorIs(t, f.services.Notes.Delete(ctx, userID, note.ID), ErrNoteNotFound)
}
