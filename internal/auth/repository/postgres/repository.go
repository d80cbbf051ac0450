package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Cryptovee252/my-best-life-platform-sub001/internal/auth/domain"
	autherror "github.com/Cryptovee252/my-best-life-platform-sub001/internal/errors"
)

// Querier is the subset of pgxpool.Pool the repository uses; pgxmock
// stands in for it in tests.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository implements domain.UserRepository, domain.TokenBlacklist,
// and lockout.Store against the users and token_blacklist tables.
type PostgresRepository struct {
	db Querier
}

func NewPostgresRepository(db Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, name, username, email, COALESCE(phone, ''), password_hash,
	email_verified, COALESCE(verification_token, ''), verification_expires,
	COALESCE(reset_token, ''), reset_expires,
	failed_login_attempts, lockout_until,
	last_active_date, last_seen, is_online, created_at, updated_at`

func (r *PostgresRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.Phone, &u.PasswordHash,
		&u.EmailVerified, &u.VerificationToken, &u.VerificationExpires,
		&u.ResetToken, &u.ResetExpires,
		&u.FailedLoginAttempts, &u.LockoutUntil,
		&u.LastActiveDate, &u.LastSeen, &u.IsOnline, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1`
	return r.scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(username) = LOWER($1) LIMIT 1`
	return r.scanUser(r.db.QueryRow(ctx, query, username))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *PostgresRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, name, username, email, phone, password_hash,
			email_verified, verification_token, verification_expires,
			last_active_date, last_seen, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, NULLIF($8, ''), $9, $10, $11, $12, $13)
	`, user.ID, user.Name, user.Username, user.Email, user.Phone, user.PasswordHash,
		user.EmailVerified, user.VerificationToken, user.VerificationExpires,
		user.LastActiveDate, user.LastSeen, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == "users_username_key" {
				return autherror.ErrUsernameAlreadyInUse
			}
			return autherror.ErrEmailAlreadyInUse
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1
	`, id, passwordHash)
	return err
}

func (r *PostgresRepository) SetVerification(ctx context.Context, id, token string, expiresAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET verification_token = $2, verification_expires = $3, updated_at = now()
		WHERE id = $1
	`, id, token, expiresAt)
	return err
}

// GetByVerificationToken returns nil when the token is unknown or already
// expired; callers cannot distinguish the two cases.
func (r *PostgresRepository) GetByVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE verification_token = $1 AND verification_expires > now() LIMIT 1`
	return r.scanUser(r.db.QueryRow(ctx, query, token))
}

func (r *PostgresRepository) MarkVerified(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET email_verified = TRUE, verification_token = NULL,
			verification_expires = NULL, updated_at = now()
		WHERE id = $1
	`, id)
	return err
}

func (r *PostgresRepository) SetResetToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET reset_token = $2, reset_expires = $3, updated_at = now()
		WHERE id = $1
	`, id, token, expiresAt)
	return err
}

func (r *PostgresRepository) GetByResetToken(ctx context.Context, token string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE reset_token = $1 AND reset_expires > now() LIMIT 1`
	return r.scanUser(r.db.QueryRow(ctx, query, token))
}

func (r *PostgresRepository) ClearResetToken(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET reset_token = NULL, reset_expires = NULL, updated_at = now()
		WHERE id = $1
	`, id)
	return err
}

func (r *PostgresRepository) TouchActivity(ctx context.Context, id string, online bool) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET last_seen = now(), is_online = $2,
			last_active_date = CURRENT_DATE, updated_at = now()
		WHERE id = $1
	`, id, online)
	return err
}

// RecordLoginFailure bumps the counter atomically and returns the new
// value, so concurrent failed logins against one account cannot race.
func (r *PostgresRepository) RecordLoginFailure(ctx context.Context, id string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		UPDATE users SET failed_login_attempts = failed_login_attempts + 1, updated_at = now()
		WHERE id = $1
		RETURNING failed_login_attempts
	`, id).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to record login failure: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) SetLockout(ctx context.Context, id string, until time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET lockout_until = $2, updated_at = now() WHERE id = $1
	`, id, until)
	return err
}

func (r *PostgresRepository) ClearLockout(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET failed_login_attempts = 0, lockout_until = NULL, updated_at = now()
		WHERE id = $1
	`, id)
	return err
}

// Add inserts into the blacklist; re-adding an existing jti is a no-op.
func (r *PostgresRepository) Add(ctx context.Context, token *domain.BlacklistedToken) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO token_blacklist (jti, user_id, token_type, expires_at, created_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (jti) DO NOTHING
	`, token.JTI, token.UserID, token.TokenType, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Contains(ctx context.Context, jti string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM token_blacklist WHERE jti = $1)
	`, jti).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return exists, nil
}

// PurgeExpired removes rows whose token would fail expiry checks anyway.
func (r *PostgresRepository) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM token_blacklist WHERE expires_at < now()`)
	if err != nil {
		return 0, fmt.Errorf("failed to purge token blacklist: %w", err)
	}
	return tag.RowsAffected(), nil
}
