package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vibe-gaming/notes/internal/config"
	"github.com/vibe-gaming/notes/internal/oauth"
	"github.com/vibe-gaming/notes/internal/queue/task"
	"github.com/vibe-gaming/notes/internal/repository/repotest"
	"github.com/vibe-gaming/notes/internal/service"
	"github.com/vibe-gaming/notes/pkg/auth"
	"github.com/vibe-gaming/notes/pkg/otp"
	"github.com/vibe-gaming/notes/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

const (
	verificationCookie = "verification_token"
	authCookie         = "auth_token"
	stateCookie        = "oauth_state"
	frontendURL        = "http://localhost:5173"
)

type recordingEnqueuer struct {
	mu    sync.Mutex
	codes []string
}

func (e *recordingEnqueuer) EnqueueContext(_ context.Context, t *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	var data task.SendVerificationEmail
	if err := json.Unmarshal(t.Payload(), &data); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.codes = append(e.codes, data.VerificationCode)

	return &asynq.TaskInfo{}, nil
}

func (e *recordingEnqueuer) lastCode(t *testing.T) string {
	t.Helper()

	e.mu.Lock()
	defer e.mu.Unlock()
	require.NotEmpty(t, e.codes)

	return e.codes[len(e.codes)-1]
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

type stubProvider struct{}

func (stubProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (stubProvider) Exchange(_ context.Context, code string) (*oauth.Identity, error) {
	if code != "good-code" {
		return nil, oauth.ErrExchangeFailed
	}
	return &oauth.Identity{ExternalID: "g-1", Email: "oauth@example.com", Name: "OAuth User"}, nil
}

type testEnv struct {
	router   *gin.Engine
	enqueuer *recordingEnqueuer
	tokens   auth.TokenManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Env:         config.EnvDevelopment,
		FrontendURL: frontendURL,
		Auth: config.AuthConfig{
			JWT: config.JWTConfig{
				SessionTokenTTL: 24 * time.Hour,
				SigningKey:      "test-signing-key",
			},
			VerificationTTL: 15 * time.Minute,
			ResendCooldown:  60 * time.Second,
		},
		Cookie: config.CookieConfig{
			VerificationName: verificationCookie,
			AuthName:         authCookie,
			OAuthStateName:   stateCookie,
		},
		Google: config.GoogleConfig{StateTTL: 10 * time.Minute},
		Email:  config.EmailConfig{Enabled: true},
	}

	tokens, err := auth.NewManager(cfg.Auth.JWT)
	require.NoError(t, err)

	store := repotest.New()
	enqueuer := &recordingEnqueuer{}
	services := service.NewServices(service.Deps{
		Config:           cfg,
		TokenManager:     tokens,
		OtpGenerator:     otp.NewGOTPGenerator(otp.DefaultLength),
		Repos:            store.Repositories(),
		Transactor:       store,
		IdentityProvider: stubProvider{},
		OAuthStates:      &memoryStateStore{states: make(map[string]bool)},
		Enqueuer:         enqueuer,
	})

	gin.SetMode(gin.TestMode)
	validator.RegisterGinValidator()
	router := gin.New()
	NewHandler(services, cfg).Init(router.Group("/api"))

	return &testEnv{router: router, enqueuer: enqueuer, tokens: tokens}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		if c != nil {
			req.AddCookie(c)
		}
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	return w
}

func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var res map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func requireErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code int) {
	t.Helper()

	require.Equal(t, status, w.Code, w.Body.String())
	require.EqualValues(t, code, decode(t, w)["error_code"])
}

// validationFields returns the field keys of a validation error body.
func validationFields(t *testing.T, w *httptest.ResponseRecorder) map[string]bool {
	t.Helper()

	fields := map[string]bool{}
	for _, ve := range decode(t, w)["validation_errors"].([]any) {
		fields[ve.(map[string]any)["field_key"].(string)] = true
	}
	return fields
}

var janeSignup = map[string]string{"name": "Jane", "email": "jane@example.com", "dob": "1990-04-12"}

// signupAndVerify returns the session cookie of a freshly verified user.
func (e *testEnv) signupAndVerify(t *testing.T) *http.Cookie {
	t.Helper()

	w := e.do(t, http.MethodPost, "/auth/signup", janeSignup)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	pending := responseCookie(w, verificationCookie)

	w = e.do(t, http.MethodPost, "/auth/verify-email", map[string]string{"code": e.enqueuer.lastCode(t)}, pending)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	session := responseCookie(w, authCookie)
	require.NotNil(t, session)
	return session
}

func TestSignupVerifyProfile(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/auth/signup", janeSignup)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	pending := responseCookie(w, verificationCookie)
	require.NotNil(t, pending)
	require.True(t, pending.HttpOnly)
	require.False(t, pending.Secure)
	require.Equal(t, http.SameSiteLaxMode, pending.SameSite)
	require.Equal(t, "/", pending.Path)
	require.Equal(t, 900, pending.MaxAge)

	code := env.enqueuer.lastCode(t)
	wrong := "100000"
	if code == wrong {
		wrong = "100001"
	}

	w = env.do(t, http.MethodPost, "/auth/verify-email", map[string]string{"code": wrong}, pending)
	requireErrorCode(t, w, http.StatusBadRequest, InvalidSessionCode)

	w = env.do(t, http.MethodPost, "/auth/verify-email", map[string]string{"code": code}, pending)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	session := responseCookie(w, authCookie)
	require.NotNil(t, session)
	require.Equal(t, 86400, session.MaxAge)
	cleared := responseCookie(w, verificationCookie)
	require.NotNil(t, cleared)
	require.Negative(t, cleared.MaxAge)

	w = env.do(t, http.MethodGet, "/user/profile", nil, session)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	user := decode(t, w)["user"].(map[string]any)
	require.Equal(t, "Jane", user["name"])
	require.Equal(t, "jane@example.com", user["email"])
	require.Equal(t, "1990-04-12", user["date_of_birth"])

	w = env.do(t, http.MethodPost, "/auth/verify-email", map[string]string{"code": code}, pending)
	requireErrorCode(t, w, http.StatusBadRequest, InvalidSessionCode)
}

func TestSignup_Validation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/auth/signup", map[string]string{"name": "J", "email": "not-an-email", "dob": "2999-01-01"})
	requireErrorCode(t, w, http.StatusBadRequest, ValidationErrorCode)

	require.Equal(t, map[string]bool{"name": true, "email": true, "dob": true}, validationFields(t, w))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	requireErrorCode(t, rec, http.StatusBadRequest, InvalidBodyCode)
}

func TestInputIsTrimmedBeforeValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/auth/signup", map[string]string{"name": "  a  ", "email": "jane@example.com", "dob": "1990-04-12"})
	requireErrorCode(t, w, http.StatusBadRequest, ValidationErrorCode)
	require.Equal(t, map[string]bool{"name": true}, validationFields(t, w))

	w = env.do(t, http.MethodPost, "/auth/signup", map[string]string{"name": "   ", "email": "jane@example.com", "dob": "1990-04-12"})
	requireErrorCode(t, w, http.StatusBadRequest, ValidationErrorCode)
	require.Equal(t, map[string]bool{"name": true}, validationFields(t, w))

	w = env.do(t, http.MethodPost, "/auth/signup", map[string]string{"name": "  Jane  ", "email": " jane@example.com ", "dob": " 1990-04-12 "})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	pending := responseCookie(w, verificationCookie)

	w = env.do(t, http.MethodPost, "/auth/verify-email", map[string]string{"code": " " + env.enqueuer.lastCode(t) + " "}, pending)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	session := responseCookie(w, authCookie)

	w = env.do(t, http.MethodGet, "/user/profile", nil, session)
	require.Equal(t, http.StatusOK, w.Code)
	user := decode(t, w)["user"].(map[string]any)
	require.Equal(t, "Jane", user["name"])
	require.Equal(t, "jane@example.com", user["email"])

	w = env.do(t, http.MethodPost, "/auth/signin", map[string]string{"email": " jane@example.com"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/notes", map[string]string{"title": "   ", "content": "milk"}, session)
	requireErrorCode(t, w, http.StatusBadRequest, ValidationErrorCode)
	require.Equal(t, map[string]bool{"title": true}, validationFields(t, w))

	w = env.do(t, http.MethodPost, "/notes", map[string]string{"title": "  groceries  ", "content": "milk"}, session)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Equal(t, "groceries", decode(t, w)["note"].(map[string]any)["title"])
}

func TestSignup_AlreadyRegistered(t *testing.T) {
	env := newTestEnv(t)
	env.signupAndVerify(t)

	w := env.do(t, http.MethodPost, "/auth/signup", janeSignup)
	requireErrorCode(t, w, http.StatusBadRequest, UserAlreadyExistsCode)
}

func TestSignin(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/auth/signin", map[string]string{"email": "jane@example.com"})
	requireErrorCode(t, w, http.StatusNotFound, UserNotFoundCode)

	w = env.do(t, http.MethodPost, "/auth/signup", janeSignup)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/auth/signin", map[string]string{"email": "jane@example.com"})
	requireErrorCode(t, w, http.StatusNotFound, UserNotFoundCode)
}

func TestSignin_RateLimitedAndVerify(t *testing.T) {
	env := newTestEnv(t)
	env.signupAndVerify(t)

	w := env.do(t, http.MethodPost, "/auth/signin", map[string]string{"email": "jane@example.com"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	pending := responseCookie(w, verificationCookie)
	require.NotNil(t, pending)

	w = env.do(t, http.MethodPost, "/auth/signin", map[string]string{"email": "jane@example.com"})
	requireErrorCode(t, w, http.StatusTooManyRequests, RateLimitedCode)
	require.Equal(t, "60", w.Header().Get("Retry-After"))

	w = env.do(t, http.MethodPost, "/auth/resend-verification-token", nil, pending)
	requireErrorCode(t, w, http.StatusTooManyRequests, RateLimitedCode)

	w = env.do(t, http.MethodPost, "/auth/verify-email", map[string]string{"code": env.enqueuer.lastCode(t)}, pending)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, responseCookie(w, authCookie))
}

func TestResend_WithoutPendingCookie(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/auth/resend-verification-token", nil)
	requireErrorCode(t, w, http.StatusBadRequest, InvalidSessionCode)

	w = env.do(t, http.MethodPost, "/auth/verify-email", map[string]string{"code": "123456"})
	requireErrorCode(t, w, http.StatusBadRequest, InvalidSessionCode)
}

// Signout sits behind the session guard: without a valid session cookie it
// answers 401 and leaves cookies untouched.
func TestSignout_RequiresSession(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/auth/signout", nil)
	requireErrorCode(t, w, http.StatusUnauthorized, UnauthorizedCode)
	require.Empty(t, w.Result().Cookies())

	w = env.do(t, http.MethodPost, "/auth/signup", janeSignup)
	pending := responseCookie(w, verificationCookie)
	require.NotNil(t, pending)

	w = env.do(t, http.MethodPost, "/auth/signout", nil, pending)
	requireErrorCode(t, w, http.StatusUnauthorized, UnauthorizedCode)
	require.Empty(t, w.Result().Cookies())
}

func TestSignout(t *testing.T) {
	env := newTestEnv(t)
	session := env.signupAndVerify(t)

	for range 2 {
		w := env.do(t, http.MethodPost, "/auth/signout", nil, session)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		for _, name := range []string{authCookie, verificationCookie} {
			c := responseCookie(w, name)
			require.NotNil(t, c, name)
			require.Empty(t, c.Value)
			require.Negative(t, c.MaxAge)
		}
	}
}

func TestAccessGuard(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/user/profile", nil)
	requireErrorCode(t, w, http.StatusUnauthorized, UnauthorizedCode)

	w = env.do(t, http.MethodPost, "/auth/signup", janeSignup)
	pending := responseCookie(w, verificationCookie)

	w = env.do(t, http.MethodGet, "/user/profile", nil, &http.Cookie{Name: authCookie, Value: pending.Value})
	requireErrorCode(t, w, http.StatusUnauthorized, UnauthorizedCode)

	w = env.do(t, http.MethodGet, "/notes", nil, &http.Cookie{Name: authCookie, Value: "garbage"})
	requireErrorCode(t, w, http.StatusUnauthorized, UnauthorizedCode)
}

func TestNotes(t *testing.T) {
	env := newTestEnv(t)
	session := env.signupAndVerify(t)

	w := env.do(t, http.MethodPost, "/notes", map[string]string{"title": "groceries", "content": "milk"}, session)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	note := decode(t, w)["note"].(map[string]any)
	id := note["id"].(string)
	require.Equal(t, "groceries", note["title"])

	w = env.do(t, http.MethodPost, "/notes", map[string]string{"title": "groceries", "content": "eggs"}, session)
	requireErrorCode(t, w, http.StatusBadRequest, NoteAlreadyExistsCode)

	w = env.do(t, http.MethodPost, "/notes", map[string]string{"content": "eggs"}, session)
	requireErrorCode(t, w, http.StatusBadRequest, ValidationErrorCode)

	w = env.do(t, http.MethodGet, "/notes", nil, session)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode(t, w)["notes"], 1)

	w = env.do(t, http.MethodGet, "/notes/"+id, nil, session)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Note fetched successfully", decode(t, w)["message"])

	w = env.do(t, http.MethodGet, "/notes/not-a-uuid", nil, session)
	requireErrorCode(t, w, http.StatusNotFound, NoteNotFoundCode)

	w = env.do(t, http.MethodDelete, "/notes/"+id, nil, session)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodDelete, "/notes/"+id, nil, session)
	requireErrorCode(t, w, http.StatusNotFound, NoteNotFoundCode)
}

func TestGoogleOAuth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/auth/google", nil)
	require.Equal(t, http.StatusFound, w.Code)
	state := responseCookie(w, stateCookie)
	require.NotNil(t, state)
	require.Equal(t, "https://accounts.example.com/auth?state="+state.Value, w.Header().Get("Location"))

	w = env.do(t, http.MethodGet, "/auth/google/callback?code=good-code&state=forged", nil, state)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, frontendURL+"/signin?error=oauth_failed", w.Header().Get("Location"))

	w = env.do(t, http.MethodGet, "/auth/google/callback?code=good-code&state="+state.Value, nil, state)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, frontendURL, w.Header().Get("Location"))

	session := responseCookie(w, authCookie)
	require.NotNil(t, session)

	w = env.do(t, http.MethodGet, "/user/profile", nil, session)
	require.Equal(t, http.StatusOK, w.Code)
	user := decode(t, w)["user"].(map[string]any)
	require.Equal(t, "oauth@example.com", user["email"])
	require.Nil(t, user["date_of_birth"])

	w = env.do(t, http.MethodGet, "/auth/google/callback?code=good-code&state="+state.Value, nil, state)
	require.Equal(t, frontendURL+"/signin?error=oauth_failed", w.Header().Get("Location"))
}
