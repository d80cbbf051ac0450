package domain

//go:generate mockgen -destination=../../mocks/mock_user_repository.go -package=mocks github.com/Cryptovee252/my-best-life-platform-sub001/internal/auth/domain UserRepository

import (
	"context"
	"time"
)

// UserRepository is the credential store contract. Email and username
// lookups are case-insensitive. Get* methods return (nil, nil) when no
// matching row exists; token lookups treat an expired token the same as
// a missing one.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	SetVerification(ctx context.Context, id, token string, expiresAt time.Time) error
	GetByVerificationToken(ctx context.Context, token string) (*User, error)
	MarkVerified(ctx context.Context, id string) error

	SetResetToken(ctx context.Context, id, token string, expiresAt time.Time) error
	GetByResetToken(ctx context.Context, token string) (*User, error)
	ClearResetToken(ctx context.Context, id string) error

	TouchActivity(ctx context.Context, id string, online bool) error

	// Lockout bookkeeping. RecordLoginFailure increments atomically and
	// returns the new consecutive-failure count.
	RecordLoginFailure(ctx context.Context, id string) (int, error)
	SetLockout(ctx context.Context, id string, until time.Time) error
	ClearLockout(ctx context.Context, id string) error
}

// TokenBlacklist is the durable revocation set consulted on every token
// verification. Add is idempotent.
type TokenBlacklist interface {
	Add(ctx context.Context, token *BlacklistedToken) error
	Contains(ctx context.Context, jti string) (bool, error)
	PurgeExpired(ctx context.Context) (int64, error)
}
