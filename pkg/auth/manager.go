package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/vibe-gaming/notes/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// Purpose tags what a signed token may be used for.
type Purpose string

const (
	PurposeAuth         Purpose = "AUTH_TOKEN"
	PurposeEmailConfirm Purpose = "EMAIL_CONFIRM"
	PurposeSignIn       Purpose = "SIGNIN"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenManager signs and verifies compact expiring tokens.
type TokenManager interface {
	Issue(subject string, purpose Purpose, ttl time.Duration) (string, error)
	Verify(token string) (*Payload, error)
}

type Payload struct {
	Subject   string
	Purpose   Purpose
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type claims struct {
	jwt.RegisteredClaims
	Purpose Purpose `json:"type"`
}

type Manager struct {
	signingKey []byte
	clockSkew  time.Duration
	now        func() time.Time
}

func NewManager(cfg config.JWTConfig) (*Manager, error) {
	if cfg.SigningKey == "" {
		return nil, errors.New("empty signing key")
	}

	if cfg.ClockSkew < 0 {
		return nil, errors.New("negative clock skew")
	}

	return &Manager{
		signingKey: []byte(cfg.SigningKey),
		clockSkew:  cfg.ClockSkew,
		now:        time.Now,
	}, nil
}

func (m *Manager) Issue(subject string, purpose Purpose, ttl time.Duration) (string, error) {
	if subject == "" || purpose == "" {
		return "", errors.New("empty subject or purpose")
	}

	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Purpose: purpose,
	})

	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign jwt failed: %w", err)
	}

	return signed, nil
}

// Verify checks signature, algorithm and expiry. Every failure is reported
// as ErrInvalidToken with the parser error attached.
func (m *Manager) Verify(token string) (*Payload, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return m.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(m.clockSkew),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if c.Subject == "" || c.Purpose == "" {
		return nil, fmt.Errorf("%w: missing subject or purpose", ErrInvalidToken)
	}

	payload := &Payload{
		Subject:   c.Subject,
		Purpose:   c.Purpose,
		ExpiresAt: c.ExpiresAt.Time,
	}
	if c.IssuedAt != nil {
		payload.IssuedAt = c.IssuedAt.Time
	}

	return payload, nil
}
