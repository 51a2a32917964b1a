package service

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrUserAlreadyRegistered = errors.New("user already registered")
	ErrUserNotFound          = errors.New("user not found")
	ErrRateLimited           = errors.New("too many requests")
	ErrInvalidSession        = errors.New("invalid or expired verification session")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrOAuthExchangeFailed   = errors.New("oauth exchange failed")

	ErrNoteNotFound      = errors.New("note not found")
	ErrNoteAlreadyExists = errors.New("note with given title already exists")
)

// RateLimitError is returned while a verification code is inside its
// resend cooldown. It matches ErrRateLimited.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: retry after %ds", ErrRateLimited, e.RetryAfterSeconds())
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// RetryAfterSeconds rounds up, never below one second.
func (e *RateLimitError) RetryAfterSeconds() int {
	secs := int(math.Ceil(e.RetryAfter.Seconds()))
	if secs < 1 {
		return 1
	}

	return secs
}
