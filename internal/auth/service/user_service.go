package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Cryptovee252/my-best-life-platform-sub001/config"
	"github.com/Cryptovee252/my-best-life-platform-sub001/internal/auth/domain"
	"github.com/Cryptovee252/my-best-life-platform-sub001/internal/auth/dto"
	"github.com/Cryptovee252/my-best-life-platform-sub001/internal/auth/password"
	autherror "github.com/Cryptovee252/my-best-life-platform-sub001/internal/errors"
	"github.com/Cryptovee252/my-best-life-platform-sub001/internal/lockout"
	"github.com/Cryptovee252/my-best-life-platform-sub001/internal/mailer"
	"github.com/Cryptovee252/my-best-life-platform-sub001/internal/ratelimit"
	"github.com/Cryptovee252/my-best-life-platform-sub001/internal/seclog"
	authconstant "github.com/Cryptovee252/my-best-life-platform-sub001/pkg/constant"
)

// UserService orchestrates the authentication flows: every boundary
// operation passes the rate limiter first, consults the credential store
// and password engine, updates the lockout manager, and reports to the
// security event logger.
type UserService struct {
	repo     domain.UserRepository
	tokens   TokenGenerator
	lockouts *lockout.Manager
	limiter  ratelimit.Limiter
	mail     mailer.Sender
	events   *seclog.Logger
	logger   *zap.Logger

	hasher password.Hasher
	rules  password.Rules
}

func NewUserService(repo domain.UserRepository, tokens TokenGenerator, lockouts *lockout.Manager,
	limiter ratelimit.Limiter, mail mailer.Sender, events *seclog.Logger, logger *zap.Logger,
	cfg *config.Config) *UserService {
	return &UserService{
		repo:     repo,
		tokens:   tokens,
		lockouts: lockouts,
		limiter:  limiter,
		mail:     mail,
		events:   events,
		logger:   logger,
		hasher:   password.NewHasher(cfg.BcryptCost),
		rules: password.Rules{
			MinLength:        cfg.MinPasswordLength,
			RequireUppercase: cfg.RequireUppercase,
			RequireLowercase: cfg.RequireLowercase,
			RequireNumbers:   cfg.RequireNumbers,
			RequireSymbols:   cfg.RequireSymbols,
		},
	}
}

// allow consults the rate limiter for one action/client pair. Exhausted
// windows are logged and surfaced as RateLimitError.
func (s *UserService) allow(ctx context.Context, action, ip string) error {
	if ip == "" {
		ip = "unknown"
	}

	allowed, retryAfter, err := s.limiter.Allow(ctx, action+":"+ip)
	if err != nil {
		return err
	}
	if !allowed {
		s.events.Log(seclog.EventRateLimitExceeded, seclog.Metadata{
			"ip":     ip,
			"action": action,
		})
		return &autherror.RateLimitError{RetryAfter: retryAfter}
	}
	return nil
}

func (s *UserService) Register(ctx context.Context, input dto.RegisterInput) (*dto.RegisterOutput, error) {
	if err := s.allow(ctx, authconstant.ActionRegister, input.IPAddress); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(input.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, autherror.ErrInvalidEmail
	}

	if violations := password.Validate(input.Password, s.rules); len(violations) > 0 {
		return nil, &autherror.WeakPasswordError{Violations: violations}
	}

	if existing, err := s.repo.GetByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, autherror.ErrEmailAlreadyInUse
	}

	if existing, err := s.repo.GetByUsername(ctx, input.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, autherror.ErrUsernameAlreadyInUse
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	verificationToken, err := randomToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	verificationExpires := now.Add(authconstant.VerificationTokenTTLHours * time.Hour)

	user := &domain.User{
		ID:                  uuid.NewString(),
		Name:                input.Name,
		Username:            input.Username,
		Email:               email,
		Phone:               input.Phone,
		PasswordHash:        hashed,
		VerificationToken:   verificationToken,
		VerificationExpires: &verificationExpires,
		LastActiveDate:      now,
		LastSeen:            now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.events.Log(seclog.EventRegistrationSuccess, seclog.Metadata{
		"user_id": user.ID,
		"ip":      input.IPAddress,
		"email":   email,
	})

	if err := s.mail.SendVerificationEmail(ctx, email, user.Name, verificationToken); err != nil {
		s.logger.Warn("verification email delivery failed", zap.String("user_id", user.ID), zap.Error(err))
	}

	return &dto.RegisterOutput{
		User:              dto.NewUserOutput(user),
		VerificationToken: verificationToken,
	}, nil
}

func (s *UserService) Login(ctx context.Context, input dto.LoginInput) (*dto.LoginOutput, error) {
	if err := s.allow(ctx, authconstant.ActionLogin, input.IPAddress); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}

	if user != nil {
		if locked, until := s.lockouts.Status(user); locked {
			return nil, &autherror.AccountLockedError{Until: until}
		}
	}

	if user == nil || !s.hasher.Verify(input.Password, user.PasswordHash) {
		if user != nil {
			if err := s.lockouts.RecordFailure(ctx, user.ID, input.IPAddress); err != nil {
				s.logger.Warn("failed to record login failure", zap.Error(err))
			}
		}
		s.events.Log(seclog.EventAuthFailure, seclog.Metadata{
			"ip":         input.IPAddress,
			"user_agent": input.UserAgent,
		})
		return nil, autherror.ErrInvalidCredentials
	}

	if !user.EmailVerified {
		return nil, autherror.ErrEmailNotVerified
	}

	if err := s.lockouts.RecordSuccess(ctx, user.ID); err != nil {
		return nil, err
	}

	accessToken, refreshToken, _, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	if err := s.repo.TouchActivity(ctx, user.ID, true); err != nil {
		s.logger.Warn("failed to touch user activity", zap.String("user_id", user.ID), zap.Error(err))
	}

	s.events.Log(seclog.EventLoginSuccess, seclog.Metadata{
		"user_id": user.ID,
		"ip":      input.IPAddress,
	})

	return &dto.LoginOutput{
		User:         dto.NewUserOutput(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh rotates a refresh token: the presented token is verified,
// blacklisted, and replaced by a fresh pair. A leaked refresh token is
// therefore good for at most one use.
func (s *UserService) Refresh(ctx context.Context, input dto.RefreshInput) (*dto.TokenResponse, error) {
	if err := s.allow(ctx, authconstant.ActionRefresh, input.IPAddress); err != nil {
		return nil, err
	}

	claims, err := s.tokens.VerifyRefreshToken(ctx, input.RefreshToken)
	if err != nil {
		s.events.Log(seclog.EventInvalidToken, seclog.Metadata{
			"ip":   input.IPAddress,
			"kind": authconstant.TokenTypeRefresh,
		})
		return nil, autherror.ErrInvalidRefreshToken
	}

	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, autherror.ErrInvalidRefreshToken
	}
	if locked, _ := s.lockouts.Status(user); locked {
		return nil, autherror.ErrInvalidRefreshToken
	}

	accessToken, refreshToken, _, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Blacklist(ctx, input.RefreshToken); err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Logout blacklists the presented access token. An already-invalid token
// is not an error: the operation is idempotent from the caller's view.
func (s *UserService) Logout(ctx context.Context, accessToken, ip string) error {
	if err := s.allow(ctx, authconstant.ActionLogout, ip); err != nil {
		return err
	}

	if claims, err := s.tokens.VerifyAccessToken(ctx, accessToken); err == nil {
		if err := s.repo.TouchActivity(ctx, claims.UserID, false); err != nil {
			s.logger.Warn("failed to touch user activity", zap.String("user_id", claims.UserID), zap.Error(err))
		}
		s.events.Log(seclog.EventLogout, seclog.Metadata{"user_id": claims.UserID})
	}

	return s.tokens.Blacklist(ctx, accessToken)
}

func (s *UserService) VerifyEmail(ctx context.Context, token string) (*dto.UserOutput, error) {
	user, err := s.repo.GetByVerificationToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.events.Log(seclog.EventEmailVerificationFailed, nil)
		return nil, autherror.ErrInvalidOrExpiredToken
	}

	if err := s.repo.MarkVerified(ctx, user.ID); err != nil {
		return nil, err
	}
	user.EmailVerified = true

	s.events.Log(seclog.EventEmailVerified, seclog.Metadata{"user_id": user.ID})

	if err := s.mail.SendWelcomeEmail(ctx, user.Email, user.Name); err != nil {
		s.logger.Warn("welcome email delivery failed", zap.String("user_id", user.ID), zap.Error(err))
	}

	out := dto.NewUserOutput(user)
	return &out, nil
}

// RequestPasswordReset always reports success so callers cannot discover
// which addresses exist. When the email is unknown it fails closed: no
// token is issued and no mail is sent.
func (s *UserService) RequestPasswordReset(ctx context.Context, input dto.ForgotPasswordInput) error {
	if err := s.allow(ctx, authconstant.ActionPasswordReset, input.IPAddress); err != nil {
		return err
	}

	user, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	resetToken, err := randomToken()
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(authconstant.ResetTokenTTLHours * time.Hour)
	if err := s.repo.SetResetToken(ctx, user.ID, resetToken, expiresAt); err != nil {
		return err
	}

	s.events.Log(seclog.EventPasswordResetRequested, seclog.Metadata{
		"user_id": user.ID,
		"ip":      input.IPAddress,
	})

	if err := s.mail.SendPasswordResetEmail(ctx, user.Email, user.Name, resetToken); err != nil {
		s.logger.Warn("password reset email delivery failed", zap.String("user_id", user.ID), zap.Error(err))
	}

	return nil
}

func (s *UserService) ResetPassword(ctx context.Context, input dto.ResetPasswordInput) error {
	if violations := password.Validate(input.NewPassword, s.rules); len(violations) > 0 {
		return &autherror.WeakPasswordError{Violations: violations}
	}

	user, err := s.repo.GetByResetToken(ctx, input.Token)
	if err != nil {
		return err
	}
	if user == nil {
		return autherror.ErrInvalidOrExpiredToken
	}

	hashed, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return err
	}
	if err := s.repo.ClearResetToken(ctx, user.ID); err != nil {
		return err
	}
	// A successful reset also clears any pending lockout.
	if err := s.lockouts.RecordSuccess(ctx, user.ID); err != nil {
		return err
	}

	s.events.Log(seclog.EventPasswordResetSuccess, seclog.Metadata{
		"user_id": user.ID,
		"ip":      input.IPAddress,
	})
	return nil
}

// randomToken returns a 64-char hex token from 32 random bytes, matching
// the token shape mailed out for verification and reset links.
func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
