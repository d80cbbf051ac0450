package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrInvalidEmail          = errors.New("invalid email address")
	ErrEmailAlreadyInUse     = errors.New("email already in use")
	ErrUsernameAlreadyInUse  = errors.New("username already in use")
	ErrEmailNotVerified      = errors.New("email address not verified")
	ErrInvalidRefreshToken   = errors.New("invalid refresh token")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrUserNotFound          = errors.New("user not found")
)

// AccountLockedError is returned while a temporary lockout is in force.
type AccountLockedError struct {
	Until time.Time
}

func (e *AccountLockedError) Error() string {
	return "account temporarily locked until " + e.Until.Format(time.RFC3339)
}

// RateLimitError is returned when a rate-limit window is exhausted.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// WeakPasswordError carries the individual policy violations so the
// handler can report all of them at once.
type WeakPasswordError struct {
	Violations []string
}

func (e *WeakPasswordError) Error() string {
	return "password does not meet requirements: " + strings.Join(e.Violations, "; ")
}
