// Package repotest provides an in-memory implementation of the repository
// interfaces for service and handler tests.
package repotest

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/vibe-gaming/notes/internal/domain"
	"github.com/vibe-gaming/notes/internal/repository"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Store keeps users, verification tokens and notes in maps. WithinTx
// serialises transactions and restores the previous state when fn fails.
type Store struct {
	mu     sync.Mutex
	txMu   sync.Mutex
	users  map[uuid.UUID]domain.User
	tokens map[uuid.UUID]domain.VerificationToken
	notes  map[uuid.UUID]domain.Note
}

func New() *Store {
	return &Store{
		users:  make(map[uuid.UUID]domain.User),
		tokens: make(map[uuid.UUID]domain.VerificationToken),
		notes:  make(map[uuid.UUID]domain.Note),
	}
}

func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		Users:              &users{s},
		VerificationTokens: &tokens{s},
		Notes:              &notes{s},
	}
}

func (s *Store) WithinTx(_ context.Context, fn func(tx *sqlx.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snapshot := s.snapshot()
	if err := fn(nil); err != nil {
		s.restore(snapshot)
		return err
	}

	return nil
}

// UserByEmail returns a copy of the stored user, if any.
func (s *Store) UserByEmail(email string) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return u, true
		}
	}

	return domain.User{}, false
}

// Tokens returns every stored token for (user, purpose), live or not.
func (s *Store) Tokens(userID uuid.UUID, purpose domain.VerificationPurpose) []domain.VerificationToken {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res []domain.VerificationToken
	for _, t := range s.tokens {
		if t.UserID == userID && t.Purpose == purpose {
			res = append(res, t)
		}
	}

	return res
}

// PutToken stores t as is, bypassing uniqueness checks.
func (s *Store) PutToken(t domain.VerificationToken) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[t.ID] = t
}

// PutUser stores u as is, bypassing uniqueness checks.
func (s *Store) PutUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[u.ID] = u
}

type state struct {
	users  map[uuid.UUID]domain.User
	tokens map[uuid.UUID]domain.VerificationToken
	notes  map[uuid.UUID]domain.Note
}

func (s *Store) snapshot() state {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := state{
		users:  make(map[uuid.UUID]domain.User, len(s.users)),
		tokens: make(map[uuid.UUID]domain.VerificationToken, len(s.tokens)),
		notes:  make(map[uuid.UUID]domain.Note, len(s.notes)),
	}
	for k, v := range s.users {
		st.users[k] = v
	}
	for k, v := range s.tokens {
		st.tokens[k] = v
	}
	for k, v := range s.notes {
		st.notes[k] = v
	}

	return st
}

func (s *Store) restore(st state) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = st.users
	s.tokens = st.tokens
	s.notes = st.notes
}

type users struct{ s *Store }

func (r *users) GetOneByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	return &u, nil
}

func (r *users) GetVerifiedByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == email && u.EmailVerified {
			return &u, nil
		}
	}

	return nil, domain.ErrNotFound
}

func (r *users) GetByEmailForUpdateWithTx(_ context.Context, _ *sqlx.Tx, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}

	return nil, domain.ErrNotFound
}

func (r *users) CreateWithTx(_ context.Context, _ *sqlx.Tx, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return domain.ErrDuplicateEntry
		}
		if user.Provider.Valid && u.Provider == user.Provider && u.ProviderID == user.ProviderID {
			return domain.ErrDuplicateEntry
		}
	}

	stored := *user
	now := time.Now()
	stored.CreatedAt, stored.UpdatedAt = now, now
	r.s.users[stored.ID] = stored

	return nil
}

func (r *users) UpdateProfileWithTx(_ context.Context, _ *sqlx.Tx, id uuid.UUID, name string, dateOfBirth sql.NullTime) error {
	return r.update(id, func(u *domain.User) {
		u.Name = name
		u.DateOfBirth = dateOfBirth
	})
}

func (r *users) MarkVerifiedWithTx(_ context.Context, _ *sqlx.Tx, id uuid.UUID) error {
	return r.update(id, func(u *domain.User) {
		u.EmailVerified = true
	})
}

func (r *users) LinkProviderWithTx(_ context.Context, _ *sqlx.Tx, id uuid.UUID, provider domain.AuthProvider, providerID string) error {
	return r.update(id, func(u *domain.User) {
		u.EmailVerified = true
		u.Provider = sql.NullString{String: string(provider), Valid: true}
		u.ProviderID = sql.NullString{String: providerID, Valid: true}
	})
}

func (r *users) update(id uuid.UUID, fn func(u *domain.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil
	}
	fn(&u)
	u.UpdatedAt = time.Now()
	r.s.users[id] = u

	return nil
}

type tokens struct{ s *Store }

func (r *tokens) GetByUserAndPurpose(_ context.Context, userID uuid.UUID, purpose domain.VerificationPurpose) (*domain.VerificationToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var latest *domain.VerificationToken
	for _, t := range r.s.tokens {
		if t.UserID != userID || t.Purpose != purpose {
			continue
		}
		if latest == nil || t.CreatedAt.After(latest.CreatedAt) {
			latest = &t
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}

	return latest, nil
}

func (r *tokens) GetLiveByCode(_ context.Context, userID uuid.UUID, purpose domain.VerificationPurpose, code string, now time.Time) (*domain.VerificationToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, t := range r.s.tokens {
		if t.UserID == userID && t.Purpose == purpose && t.Code == code && t.IsLive(now) {
			return &t, nil
		}
	}

	return nil, domain.ErrNotFound
}

func (r *tokens) CreateWithTx(_ context.Context, _ *sqlx.Tx, token *domain.VerificationToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, t := range r.s.tokens {
		if t.UserID == token.UserID && t.Purpose == token.Purpose {
			return domain.ErrDuplicateEntry
		}
	}
	r.s.tokens[token.ID] = *token

	return nil
}

func (r *tokens) DeleteByUserAndPurposeWithTx(_ context.Context, _ *sqlx.Tx, userID uuid.UUID, purpose domain.VerificationPurpose) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, t := range r.s.tokens {
		if t.UserID == userID && t.Purpose == purpose {
			delete(r.s.tokens, id)
		}
	}

	return nil
}

func (r *tokens) DeleteByIDWithTx(_ context.Context, _ *sqlx.Tx, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tokens[id]; !ok {
		return domain.ErrNoRowsAffected
	}
	delete(r.s.tokens, id)

	return nil
}

func (r *tokens) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, t := range r.s.tokens {
		if !t.IsLive(now) {
			delete(r.s.tokens, id)
			n++
		}
	}

	return n, nil
}

type notes struct{ s *Store }

func (r *notes) Create(_ context.Context, note *domain.Note) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, n := range r.s.notes {
		if n.UserID == note.UserID && n.Title == note.Title {
			return domain.ErrDuplicateEntry
		}
	}
	r.s.notes[note.ID] = *note

	return nil
}

func (r *notes) GetAllByUserID(_ context.Context, userID uuid.UUID) ([]domain.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	res := make([]domain.Note, 0)
	for _, n := range r.s.notes {
		if n.UserID == userID {
			res = append(res, n)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})

	return res, nil
}

func (r *notes) GetOneByID(_ context.Context, userID uuid.UUID, id uuid.UUID) (*domain.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.notes[id]
	if !ok || n.UserID != userID {
		return nil, domain.ErrNotFound
	}

	return &n, nil
}

func (r *notes) GetByTitle(_ context.Context, userID uuid.UUID, title string) (*domain.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, n := range r.s.notes {
		if n.UserID == userID && n.Title == title {
			return &n, nil
		}
	}

	return nil, domain.ErrNotFound
}

func (r *notes) Delete(_ context.Context, userID uuid.UUID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.notes[id]
	if !ok || n.UserID != userID {
		return domain.ErrNotFound
	}
	delete(r.s.notes, id)

	return nil
}
