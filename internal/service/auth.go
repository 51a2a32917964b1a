package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vibe-gaming/notes/internal/config"
	"github.com/vibe-gaming/notes/internal/db"
	"github.com/vibe-gaming/notes/internal/domain"
	"github.com/vibe-gaming/notes/internal/oauth"
	"github.com/vibe-gaming/notes/internal/repository"
	"github.com/vibe-gaming/notes/pkg/auth"
	"github.com/vibe-gaming/notes/pkg/logger"
	"github.com/vibe-gaming/notes/pkg/otp"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type SignupInput struct {
	Name        string
	Email       string
	DateOfBirth time.Time
}

// PendingVerification is the short-lived token binding a browser to the
// user a code was sent to.
type PendingVerification struct {
	Token string
	TTL   time.Duration
}

type Session struct {
	UserID uuid.UUID
	Token  string
	TTL    time.Duration
}

type OAuthRedirect struct {
	URL   string
	State string
}

type OAuthCallbackInput struct {
	Code          string
	State         string
	ExpectedState string
}

type authService struct {
	userRepository   repository.Users
	tokenRepository  repository.VerificationTokens
	transactor       db.Transactor
	tokenManager     auth.TokenManager
	otpGenerator     otp.Generator
	identityProvider oauth.IdentityProvider
	oauthStates      oauth.StateStore
	emails           Emails
	authConfig       config.AuthConfig
	now              func() time.Time
}

func newAuthService(userRepository repository.Users,
	tokenRepository repository.VerificationTokens,
	transactor db.Transactor,
	tokenManager auth.TokenManager,
	otpGenerator otp.Generator,
	identityProvider oauth.IdentityProvider,
	oauthStates oauth.StateStore,
	emails Emails,
	authConfig config.AuthConfig,
	now func() time.Time,
) *authService {
	return &authService{
		userRepository:   userRepository,
		tokenRepository:  tokenRepository,
		transactor:       transactor,
		tokenManager:     tokenManager,
		otpGenerator:     otpGenerator,
		identityProvider: identityProvider,
		oauthStates:      oauthStates,
		emails:           emails,
		authConfig:       authConfig,
		now:              now,
	}
}

// Signup registers a new unverified user, or refreshes the profile of an
// unverified one, and issues an email confirmation code.
func (s *authService) Signup(ctx context.Context, input SignupInput) (*PendingVerification, error) {
	var (
		userID uuid.UUID
		code   string
	)

	signup := func() error {
		return s.transactor.WithinTx(ctx, func(tx *sqlx.Tx) error {
			now := s.now()
			dob := sql.NullTime{Time: input.DateOfBirth, Valid: !input.DateOfBirth.IsZero()}

			user, err := s.userRepository.GetByEmailForUpdateWithTx(ctx, tx, input.Email)
			switch {
			case err == nil:
				if user.EmailVerified {
					return ErrUserAlreadyRegistered
				}
				if err := s.checkCooldown(ctx, user.ID, domain.PurposeEmailConfirm, now); err != nil {
					return err
				}
				if err := s.userRepository.UpdateProfileWithTx(ctx, tx, user.ID, input.Name, dob); err != nil {
					return fmt.Errorf("update user profile failed: %w", err)
				}
				userID = user.ID
			case errors.Is(err, domain.ErrNotFound):
				userID, err = uuid.NewV7()
				if err != nil {
					return fmt.Errorf("generate user id failed: %w", err)
				}
				newUser := &domain.User{
					ID:          userID,
					Email:       input.Email,
					Name:        input.Name,
					DateOfBirth: dob,
				}
				if err := s.userRepository.CreateWithTx(ctx, tx, newUser); err != nil {
					return fmt.Errorf("create user failed: %w", err)
				}
			default:
				return fmt.Errorf("get user by email failed: %w", err)
			}

			code, err = s.replaceCodeWithTx(ctx, tx, userID, domain.PurposeEmailConfirm, now)
			return err
		})
	}

	err := signup()
	if errors.Is(err, domain.ErrDuplicateEntry) {
		// concurrent signup for the same email won the insert
		err = signup()
	}
	if err != nil {
		return nil, err
	}

	return s.startVerification(ctx, userID, input.Email, code, auth.PurposeEmailConfirm)
}

// Signin issues a sign-in code to an already verified user.
func (s *authService) Signin(ctx context.Context, email string) (*PendingVerification, error) {
	if _, err := s.userRepository.GetVerifiedByEmail(ctx, email); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get verified user failed: %w", err)
	}

	var (
		userID uuid.UUID
		code   string
	)

	err := s.transactor.WithinTx(ctx, func(tx *sqlx.Tx) error {
		now := s.now()

		user, err := s.userRepository.GetByEmailForUpdateWithTx(ctx, tx, email)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("get user by email failed: %w", err)
		}
		if !user.EmailVerified {
			return ErrUserNotFound
		}

		if err := s.checkCooldown(ctx, user.ID, domain.PurposeSignIn, now); err != nil {
			return err
		}

		userID = user.ID
		code, err = s.replaceCodeWithTx(ctx, tx, user.ID, domain.PurposeSignIn, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.startVerification(ctx, userID, email, code, auth.PurposeSignIn)
}

// ResendCode replaces the live code bound to pendingToken. The pending
// token itself stays valid.
func (s *authService) ResendCode(ctx context.Context, pendingToken string) error {
	userID, purpose, err := s.parsePendingToken(pendingToken)
	if err != nil {
		return err
	}

	var (
		email string
		code  string
	)

	err = s.transactor.WithinTx(ctx, func(tx *sqlx.Tx) error {
		now := s.now()

		user, err := s.userRepository.GetOneByID(ctx, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return ErrInvalidSession
			}
			return fmt.Errorf("get user by id failed: %w", err)
		}

		current, err := s.tokenRepository.GetByUserAndPurpose(ctx, userID, purpose)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return ErrInvalidSession
			}
			return fmt.Errorf("get verification token failed: %w", err)
		}
		if !current.IsLive(now) {
			return ErrInvalidSession
		}
		if left := current.CooldownLeft(now, s.authConfig.ResendCooldown); left > 0 {
			return &RateLimitError{RetryAfter: left}
		}

		email = user.Email
		code, err = s.replaceCodeWithTx(ctx, tx, userID, purpose, now)
		return err
	})
	if err != nil {
		return err
	}

	s.sendCode(ctx, email, code)

	return nil
}

// VerifyCode consumes the code bound to pendingToken and opens a session.
// A wrong, expired or already used code all yield ErrInvalidSession.
func (s *authService) VerifyCode(ctx context.Context, pendingToken string, code string) (*Session, error) {
	userID, purpose, err := s.parsePendingToken(pendingToken)
	if err != nil {
		return nil, err
	}

	err = s.transactor.WithinTx(ctx, func(tx *sqlx.Tx) error {
		token, err := s.tokenRepository.GetLiveByCode(ctx, userID, purpose, code, s.now())
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return ErrInvalidSession
			}
			return fmt.Errorf("get verification token failed: %w", err)
		}

		if err := s.tokenRepository.DeleteByIDWithTx(ctx, tx, token.ID); err != nil {
			if errors.Is(err, domain.ErrNoRowsAffected) {
				return ErrInvalidSession
			}
			return fmt.Errorf("delete verification token failed: %w", err)
		}

		if err := s.userRepository.MarkVerifiedWithTx(ctx, tx, userID); err != nil {
			return fmt.Errorf("mark user verified failed: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.newSession(userID)
}

func (s *authService) OAuthLoginURL(ctx context.Context) (*OAuthRedirect, error) {
	state, err := oauth.NewState()
	if err != nil {
		return nil, err
	}

	if err := s.oauthStates.Save(ctx, state); err != nil {
		return nil, err
	}

	return &OAuthRedirect{
		URL:   s.identityProvider.AuthCodeURL(state),
		State: state,
	}, nil
}

// OAuthCallback finds or creates the user the provider vouches for. The
// state must match the browser cookie and must not have been used before.
func (s *authService) OAuthCallback(ctx context.Context, input OAuthCallbackInput) (*Session, error) {
	if input.Code == "" || input.State == "" || input.State != input.ExpectedState {
		return nil, ErrOAuthExchangeFailed
	}

	ok, err := s.oauthStates.Consume(ctx, input.State)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOAuthExchangeFailed
	}

	identity, err := s.identityProvider.Exchange(ctx, input.Code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOAuthExchangeFailed, err)
	}

	email := strings.TrimSpace(identity.Email)
	name := strings.TrimSpace(identity.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	var userID uuid.UUID
	link := func() error {
		return s.transactor.WithinTx(ctx, func(tx *sqlx.Tx) error {
			user, err := s.userRepository.GetByEmailForUpdateWithTx(ctx, tx, email)
			switch {
			case err == nil:
				userID = user.ID
				if err := s.userRepository.LinkProviderWithTx(ctx, tx, user.ID, domain.ProviderGoogle, identity.ExternalID); err != nil {
					return fmt.Errorf("link provider failed: %w", err)
				}
				if err := s.tokenRepository.DeleteByUserAndPurposeWithTx(ctx, tx, user.ID, domain.PurposeEmailConfirm); err != nil {
					return fmt.Errorf("delete pending confirmation failed: %w", err)
				}
			case errors.Is(err, domain.ErrNotFound):
				userID, err = uuid.NewV7()
				if err != nil {
					return fmt.Errorf("generate user id failed: %w", err)
				}
				newUser := &domain.User{
					ID:            userID,
					Email:         email,
					Name:          name,
					EmailVerified: true,
					Provider:      sql.NullString{String: string(domain.ProviderGoogle), Valid: true},
					ProviderID:    sql.NullString{String: identity.ExternalID, Valid: true},
				}
				if err := s.userRepository.CreateWithTx(ctx, tx, newUser); err != nil {
					return fmt.Errorf("create user failed: %w", err)
				}
			default:
				return fmt.Errorf("get user by email failed: %w", err)
			}

			return nil
		})
	}

	err = link()
	if errors.Is(err, domain.ErrDuplicateEntry) {
		err = link()
	}
	if err != nil {
		return nil, err
	}

	return s.newSession(userID)
}

// Authenticate resolves a session token to the user id it was issued for.
func (s *authService) Authenticate(token string) (uuid.UUID, error) {
	payload, err := s.tokenManager.Verify(token)
	if err != nil {
		return uuid.Nil, ErrUnauthorized
	}

	if payload.Purpose != auth.PurposeAuth {
		return uuid.Nil, ErrUnauthorized
	}

	userID, err := uuid.Parse(payload.Subject)
	if err != nil {
		return uuid.Nil, ErrUnauthorized
	}

	return userID, nil
}

func (s *authService) parsePendingToken(token string) (uuid.UUID, domain.VerificationPurpose, error) {
	payload, err := s.tokenManager.Verify(token)
	if err != nil {
		return uuid.Nil, "", ErrInvalidSession
	}

	var purpose domain.VerificationPurpose
	switch payload.Purpose {
	case auth.PurposeEmailConfirm:
		purpose = domain.PurposeEmailConfirm
	case auth.PurposeSignIn:
		purpose = domain.PurposeSignIn
	default:
		return uuid.Nil, "", ErrInvalidSession
	}

	userID, err := uuid.Parse(payload.Subject)
	if err != nil {
		return uuid.Nil, "", ErrInvalidSession
	}

	return userID, purpose, nil
}

func (s *authService) checkCooldown(ctx context.Context, userID uuid.UUID, purpose domain.VerificationPurpose, now time.Time) error {
	current, err := s.tokenRepository.GetByUserAndPurpose(ctx, userID, purpose)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get verification token failed: %w", err)
	}

	if left := current.CooldownLeft(now, s.authConfig.ResendCooldown); left > 0 {
		return &RateLimitError{RetryAfter: left}
	}

	return nil
}

// replaceCodeWithTx drops any code for (user, purpose) and stores a new one.
func (s *authService) replaceCodeWithTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, purpose domain.VerificationPurpose, now time.Time) (string, error) {
	code, err := s.otpGenerator.Generate()
	if err != nil {
		return "", fmt.Errorf("generate verification code failed: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate verification token id failed: %w", err)
	}

	if err := s.tokenRepository.DeleteByUserAndPurposeWithTx(ctx, tx, userID, purpose); err != nil {
		return "", fmt.Errorf("delete verification tokens failed: %w", err)
	}

	token := &domain.VerificationToken{
		ID:        id,
		UserID:    userID,
		Purpose:   purpose,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(s.authConfig.VerificationTTL),
	}
	if err := s.tokenRepository.CreateWithTx(ctx, tx, token); err != nil {
		return "", fmt.Errorf("create verification token failed: %w", err)
	}

	return code, nil
}

func (s *authService) startVerification(ctx context.Context, userID uuid.UUID, email string, code string, purpose auth.Purpose) (*PendingVerification, error) {
	token, err := s.tokenManager.Issue(userID.String(), purpose, s.authConfig.VerificationTTL)
	if err != nil {
		return nil, fmt.Errorf("issue verification token failed: %w", err)
	}

	s.sendCode(ctx, email, code)

	return &PendingVerification{
		Token: token,
		TTL:   s.authConfig.VerificationTTL,
	}, nil
}

func (s *authService) newSession(userID uuid.UUID) (*Session, error) {
	ttl := s.authConfig.JWT.SessionTokenTTL

	token, err := s.tokenManager.Issue(userID.String(), auth.PurposeAuth, ttl)
	if err != nil {
		return nil, fmt.Errorf("issue session token failed: %w", err)
	}

	return &Session{
		UserID: userID,
		Token:  token,
		TTL:    ttl,
	}, nil
}

// sendCode never fails the request; the code can be resent.
func (s *authService) sendCode(ctx context.Context, email string, code string) {
	if err := s.emails.SendVerificationCode(ctx, email, code); err != nil {
		logger.Error("send verification code failed", zap.String("email", email), zap.Error(err))
	}
}
