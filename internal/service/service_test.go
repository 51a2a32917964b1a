package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/vibe-gaming/notes/internal/config"
	"github.com/vibe-gaming/notes/internal/oauth"
	"github.com/vibe-gaming/notes/internal/queue/task"
	"github.com/vibe-gaming/notes/internal/repository/repotest"
	"github.com/vibe-gaming/notes/pkg/auth"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.t = c.t.Add(d)
}

type sequenceGenerator struct {
	mu sync.Mutex
	n  int
}

func (g *sequenceGenerator) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.n++
	return fmt.Sprintf("%06d", 100000+g.n), nil
}

type recordingEnqueuer struct {
	mu    sync.Mutex
	tasks []*asynq.Task
	err   error
}

func (e *recordingEnqueuer) EnqueueContext(_ context.Context, t *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.err != nil {
		return nil, e.err
	}
	e.tasks = append(e.tasks, t)

	return &asynq.TaskInfo{Type: t.Type()}, nil
}

func (e *recordingEnqueuer) sent(t *testing.T) []task.SendVerificationEmail {
	t.Helper()

	e.mu.Lock()
	defer e.mu.Unlock()

	res := make([]task.SendVerificationEmail, 0, len(e.tasks))
	for _, tsk := range e.tasks {
		require.Equal(t, task.SendVerificationEmailTaskName, tsk.Type())
		var data task.SendVerificationEmail
		require.NoError(t, json.Unmarshal(tsk.Payload(), &data))
		res = append(res, data)
	}

	return res
}

type memoryStateStore struct {
	mu     sync.Mutex
	states map[string]bool
}

func (s *memoryStateStore) Save(_ context.Context, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[state] = true
	return nil
}

func (s *memoryStateStore) Consume(_ context.Context, state string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok := s.states[state]
	delete(s.states, state)
	return ok, nil
}

type identityProviderMock struct {
	mock.Mock
}

func (m *identityProviderMock) AuthCodeURL(state string) string {
	return m.Called(state).String(0)
}

func (m *identityProviderMock) Exchange(ctx context.Context, code string) (*oauth.Identity, error) {
	args := m.Called(ctx, code)
	identity, _ := args.Get(0).(*oauth.Identity)
	return identity, args.Error(1)
}

type fixture struct {
	store    *repotest.Store
	services *Services
	clock    *testClock
	enqueuer *recordingEnqueuer
	states   *memoryStateStore
	provider *identityProviderMock
	tokens   auth.TokenManager
}

func testConfig() *config.Config {
	return &config.Config{
		Env: config.EnvDevelopment,
		Auth: config.AuthConfig{
			JWT: config.JWTConfig{
				SessionTokenTTL: 24 * time.Hour,
				SigningKey:      "test-signing-key",
			},
			VerificationTTL: 15 * time.Minute,
			ResendCooldown:  60 * time.Second,
		},
		Email: config.EmailConfig{Enabled: true},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := testConfig()
	tokens, err := auth.NewManager(cfg.Auth.JWT)
	require.NoError(t, err)

	f := &fixture{
		store:    repotest.New(),
		clock:    &testClock{t: time.Now()},
		enqueuer: &recordingEnqueuer{},
		states:   &memoryStateStore{states: make(map[string]bool)},
		provider: &identityProviderMock{},
		tokens:   tokens,
	}
	f.services = NewServices(Deps{
		Config:           cfg,
		TokenManager:     tokens,
		OtpGenerator:     &sequenceGenerator{},
		Repos:            f.store.Repositories(),
		Transactor:       f.store,
		IdentityProvider: f.provider,
		OAuthStates:      f.states,
		Enqueuer:         f.enqueuer,
		Now:              f.clock.Now,
	})

	return f
}

// lastCode returns the most recently mailed code.
func (f *fixture) lastCode(t *testing.T) string {
	t.Helper()

	sent := f.enqueuer.sent(t)
	require.NotEmpty(t, sent)
	return sent[len(sent)-1].VerificationCode
}

// registerVerified runs signup and verification for email.
func (f *fixture) registerVerified(t *testing.T, email string) *Session {
	t.Helper()
	ctx := context.Background()

	pending, err := f.services.Auth.Signup(ctx, SignupInput{
		Name:        "Jane",
		Email:       email,
		DateOfBirth: time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	session, err := f.services.Auth.VerifyCode(ctx, pending.Token, f.lastCode(t))
	require.NoError(t, err)

	return session
}

func TestRateLimitError(t *testing.T) {
	var err error = &RateLimitError{RetryAfter: 1500 * time.Millisecond}

	require.True(t, errors.Is(err, ErrRateLimited))
	require.False(t, errors.Is(err, ErrInvalidSession))

	var rl *RateLimitError
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &rl))
	require.Equal(t, 2, rl.RetryAfterSeconds())
	require.Equal(t, 1, (&RateLimitError{}).RetryAfterSeconds())
}
