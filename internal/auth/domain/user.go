package domain

import "time"

// User is the identity record the auth core reads and writes. The wider
// platform stores more profile fields; only the ones the auth flows touch
// are mapped here.
type User struct {
	ID           string
	Name         string
	Username     string
	Email        string
	Phone        string
	PasswordHash string

	EmailVerified       bool
	VerificationToken   string
	VerificationExpires *time.Time
	ResetToken          string
	ResetExpires        *time.Time

	FailedLoginAttempts int
	LockoutUntil        *time.Time

	LastActiveDate time.Time
	LastSeen       time.Time
	IsOnline       bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BlacklistedToken is a revoked token identifier. Rows become purgeable
// once ExpiresAt has passed, since the token would fail the expiry check
// anyway.
type BlacklistedToken struct {
	JTI       string
	UserID    string
	TokenType string
	ExpiresAt time.Time
	CreatedAt time.Time
}
