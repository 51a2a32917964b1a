package domain

import (
	"time"

	"github.com/google/uuid"
)

// VerificationPurpose discriminates the email confirmation flow from the
// sign-in flow. At most one live token exists per (user, purpose).
type VerificationPurpose string

const (
	PurposeEmailConfirm VerificationPurpose = "EMAIL_CONFIRM"
	PurposeSignIn       VerificationPurpose = "SIGNIN"
)

func (p VerificationPurpose) Valid() bool {
	return p == PurposeEmailConfirm || p == PurposeSignIn
}

type VerificationToken struct {
	ID        uuid.UUID           `db:"id"`
	UserID    uuid.UUID           `db:"user_id"`
	Purpose   VerificationPurpose `db:"purpose"`
	Code      string              `db:"code"`
	CreatedAt time.Time           `db:"created_at"`
	ExpiresAt time.Time           `db:"expires_at"`
}

// IsLive reports whether the code may still be used at now.
func (t *VerificationToken) IsLive(now time.Time) bool {
	return now.Before(t.ExpiresAt)
}

// CooldownLeft returns how long a replacement must wait, or zero.
func (t *VerificationToken) CooldownLeft(now time.Time, cooldown time.Duration) time.Duration {
	if !t.IsLive(now) {
		return 0
	}

	left := t.CreatedAt.Add(cooldown).Sub(now)
	if left < 0 {
		return 0
	}

	return left
}
