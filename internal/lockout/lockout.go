// Package lockout tracks consecutive failed logins and enforces the
// temporary account lock.
package lockout

import (
	"context"
	"strconv"
	"time"

	"github.com/Cryptovee252/my-best-life-platform-sub001/internal/auth/domain"
	"github.com/Cryptovee252/my-best-life-platform-sub001/internal/seclog"
)

//go:generate mockgen -destination=../mocks/mock_lockout_store.go -package=mocks github.com/Cryptovee252/my-best-life-platform-sub001/internal/lockout Store

// Store is the persistence the manager needs; the postgres user
// repository satisfies it.
type Store interface {
	RecordLoginFailure(ctx context.Context, userID string) (int, error)
	SetLockout(ctx context.Context, userID string, until time.Time) error
	ClearLockout(ctx context.Context, userID string) error
}

// Manager applies the failure-count threshold. Counting is delegated to
// an atomic increment in the store, so concurrent failures for the same
// account cannot lose updates.
type Manager struct {
	store       Store
	maxAttempts int
	duration    time.Duration
	events      *seclog.Logger
}

func NewManager(store Store, maxAttempts int, duration time.Duration, events *seclog.Logger) *Manager {
	return &Manager{
		store:       store,
		maxAttempts: maxAttempts,
		duration:    duration,
		events:      events,
	}
}

// Status reports whether the user is currently locked out. A lockout whose
// deadline has passed counts as cleared; no write is needed because
// RecordSuccess resets the row on the next successful login.
func (m *Manager) Status(u *domain.User) (locked bool, until time.Time) {
	if u.LockoutUntil == nil {
		return false, time.Time{}
	}
	if time.Now().After(*u.LockoutUntil) {
		return false, time.Time{}
	}
	return true, *u.LockoutUntil
}

// RecordFailure increments the consecutive-failure count and, at the
// threshold, sets the lockout deadline and emits ACCOUNT_LOCKED.
func (m *Manager) RecordFailure(ctx context.Context, userID, ip string) error {
	count, err := m.store.RecordLoginFailure(ctx, userID)
	if err != nil {
		return err
	}

	if count < m.maxAttempts {
		return nil
	}

	until := time.Now().Add(m.duration)
	if err := m.store.SetLockout(ctx, userID, until); err != nil {
		return err
	}

	m.events.Log(seclog.EventAccountLocked, seclog.Metadata{
		"user_id":       userID,
		"ip":            ip,
		"attempts":      strconv.Itoa(count),
		"lockout_until": until.UTC().Format(time.RFC3339),
	})
	return nil
}

// RecordSuccess resets the failure count and clears any lockout.
func (m *Manager) RecordSuccess(ctx context.Context, userID string) error {
	return m.store.ClearLockout(ctx, userID)
}
