package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Cryptovee252/my-best-life-platform-sub001/config"
	"github.com/Cryptovee252/my-best-life-platform-sub001/internal/auth/domain"
	"github.com/Cryptovee252/my-best-life-platform-sub001/internal/auth/dto"
	"github.com/Cryptovee252/my-best-life-platform-sub001/internal/auth/service"
	autherror "github.com/Cryptovee252/my-best-life-platform-sub001/internal/errors"
	"github.com/Cryptovee252/my-best-life-platform-sub001/internal/lockout"
	"github.com/Cryptovee252/my-best-life-platform-sub001/internal/mocks"
	"github.com/Cryptovee252/my-best-life-platform-sub001/internal/seclog"
)

type serviceFixture struct {
	repo    *mocks.MockUserRepository
	tokens  *mocks.MockTokenGenerator
	limiter *mocks.MockLimiter
	mail    *mocks.MockSender
	svc     *service.UserService
}

func newServiceFixture(t *testing.T, ctrl *gomock.Controller) *serviceFixture {
	t.Helper()

	events := seclog.New(seclog.Config{FilePath: filepath.Join(t.TempDir(), "security.log")}, nil)
	t.Cleanup(func() { _ = events.Close() })

	f := &serviceFixture{
		repo:    mocks.NewMockUserRepository(ctrl),
		tokens:  mocks.NewMockTokenGenerator(ctrl),
		limiter: mocks.NewMockLimiter(ctrl),
		mail:    mocks.NewMockSender(ctrl),
	}

	cfg := &config.Config{
		MinPasswordLength: 8,
		RequireUppercase:  true,
		RequireLowercase:  true,
		RequireNumbers:    true,
		RequireSymbols:    true,
		BcryptCost:        bcrypt.MinCost,
	}

	lockouts := lockout.NewManager(f.repo, 5, 15*time.Minute, events)
	f.svc = service.NewUserService(f.repo, f.tokens, lockouts, f.limiter, f.mail, events, zap.NewNop(), cfg)

	return f
}

func (f *serviceFixture) allowAll() {
	f.limiter.EXPECT().Allow(gomock.Any(), gomock.Any()).Return(true, time.Duration(0), nil).AnyTimes()
}

func hashFor(t *testing.T, password string) string {
	t.Helper()

	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(digest)
}

func TestUserService_Register_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newServiceFixture(t, ctrl)
	f.allowAll()

	input := dto.RegisterInput{
		Name:      "Test User",
		Username:  "testuser",
		Email:     "test@example.com",
		Password:  "Str0ng!Pass",
		IPAddress: "10.0.0.1",
	}

	// Mock expectations
	f.repo.EXPECT().GetByEmail(gomock.Any(), input.Email).Return(nil, nil)
	f.repo.EXPECT().GetByUsername(gomock.Any(), input.Username).Return(nil, nil)
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *domain.User) error {
			assert.NotEmpty(t, u.ID)
			assert.Equal(t, input.Email, u.Email)
			assert.NotEmpty(t, u.PasswordHash)
			assert.NotEqual(t, input.Password, u.PasswordHash)
			assert.False(t, u.EmailVerified)
			assert.Len(t, u.VerificationToken, 64)
			require.NotNil(t, u.VerificationExpires)
			assert.WithinDuration(t, time.Now().Add(24*time.Hour), *u.VerificationExpires, time.Minute)
			return nil
		})
	f.mail.EXPECT().SendVerificationEmail(gomock.Any(), input.Email, input.Name, gomock.Any()).Return(nil)

	out, err := f.svc.Register(context.Background(), input)

	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, input.Email, out.User.Email)
	assert.False(t, out.User.EmailVerified)
	assert.Len(t, out.VerificationToken, 64)
}

func TestUserService_Register_InvalidEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newServiceFixture(t, ctrl)
	f.allowAll()

	out, err := f.svc.Register(context.Background(), dto.RegisterInput{
		Email:    "not-an-email",
		Password: "Str0ng!Pass",
	})

	assert.Equal(t, autherror.ErrInvalidEmail, err)
	assert.Nil(t, out)
}

func TestUserService_Register_WeakPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newServiceFixture(t, ctrl)
	f.allowAll()

	out, err := f.svc.Register(context.Background(), dto.RegisterInput{
		Email:    "test@example.com",
		Password: "short",
	})

	require.Error(t, err)
	var weak *autherror.WeakPasswordError
	require.ErrorAs(t, err, &weak)
	assert.NotEmpty(t, weak.Violations)
	assert.Nil(t, out)
}

func TestUserService_Register_EmailAlreadyExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newServiceFixture(t, ctrl)
	f.allowAll()

	input := dto.RegisterInput{
		Username: "testuser",
		Email:    "test@example.com",
		Password: "Str0ng!Pass",
	}

	// Mock expectations
	f.repo.EXPECT().GetByEmail(gomock.Any(), input.Email).
		Return(&domain.User{ID: "existing-id", Email: input.Email}, nil)

	out, err := f.svc.Register(context.Background(), input)

	assert.Equal(t, autherror.ErrEmailAlreadyInUse, err)
	assert.Nil(t, out)
}

func TestUserService_Register_UsernameAlreadyExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newServiceFixture(t, ctrl)
	f.allowAll()

	input := dto.RegisterInput{
		Username: "testuser",
		Email:    "test@example.com",
		Password: "Str0ng!Pass",
	}

	// Mock expectations
	f.repo.EXPECT().GetByEmail(gomock.Any(), input.Email).Return(nil, nil)
	f.repo.EXPECT().GetByUsername(gomock.Any(), input.Username).
		Return(&domain.User{ID: "existing-id", Username: input.Username}, nil)

	out, err := f.svc.Register(context.Background(), input)

	assert.Equal(t, autherror.ErrUsernameAlreadyInUse, err)
	assert.Nil(t, out)
}

func TestUserService_Register_RateLimited(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newServiceFixture(t, ctrl)

	f.limiter.EXPECT().Allow(gomock.Any(), "register:10.0.0.1").
		Return(false, 30*time.Second, nil)

	out, err := f.svc.Register(context.Background(), dto.RegisterInput{
		Email:     "test@example.com",
		Password:  "Str0ng!Pass",
		IPAddress: "10.0.0.1",
	})

	require.Error(t, err)
	var rle *autherror.RateLimitError
	require.ErrorAs(t, err, &rle)
	assert.Equal(t, 30*time.Second, rle.RetryAfter)
	assert.Nil(t, out)
}

func TestUserService_Register_EmailDeliveryFailureIsNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newServiceFixture(t, ctrl)
	f.allowAll()

	input := dto.RegisterInput{
		Name:     "Test User",
		Username: "testuser",
		Email:    "test@example.com",
		Password: "Str0ng!Pass",
	}

	// Mock expectations
	f.repo.EXPECT().GetByEmail(gomock.Any(), input.Email).Return(nil, nil)
	f.repo.EXPECT().GetByUsername(gomock.Any(), input.Username).Return(nil, nil)
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	f.mail.EXPECT().SendVerificationEmail(gomock.Any(), input.Email, input.Name, gomock.Any()).
		Return(errors.New("smtp unavailable"))

	out, err := f.svc.Register(context.Background(), input)

	require.NoError(t, err)
	assert.NotNil(t, out)
}

func TestUserService_Login_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newServiceFixture(t, ctrl)
	f.allowAll()

	password := "Str0ng!Pass"
	user := &domain.User{
		ID:            "user-123",
		Email:         "test@example.com",
		PasswordHash:  hashFor(t, password),
		EmailVerified: true,
	}

	// Mock expectations
	f.repo.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)
	f.repo.EXPECT().ClearLockout(gomock.Any(), user.ID).Return(nil)
	f.tokens.EXPECT().Generate(user.ID, user.Email).
		Return("access-token", "refresh-token", time.Now().Add(time.Hour), nil)
	f.repo.EXPECT().TouchActivity(gomock.Any(), user.ID, true).Return(nil)

	out, err := f.svc.Login(context.Background(), dto.LoginInput{
		Email:    user.Email,
		Password: password,
	})

	require.NoError(t, err)
	assert.Equal(t, "access-token", out.AccessToken)
	assert.Equal(t, "refresh-token", out.RefreshToken)
	assert.Equal(t, user.ID, out.User.ID)
}

func TestUserService_Login_WrongPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newServiceFixture(t, ctrl)
	f.allowAll()

	user := &domain.User{
		ID:            "user-123",
		Email:         "test@example.com",
		PasswordHash:  hashFor(t, "Str0ng!Pass"),
		EmailVerified: true,
	}

	// Mock expectations
	f.repo.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)
	f.repo.EXPECT().RecordLoginFailure(gomock.Any(), user.ID).Return(1, nil)

	out, err := f.svc.Login(context.Background(), dto.LoginInput{
		Email:    user.Email,
		Password: "wrong-password",
	})

	assert.Equal(t, autherror.ErrInvalidCredentials, err)
	assert.Nil(t, out)
}

func TestUserService_Login_UnknownEmailLooksLikeWrongPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newServiceFixture(t, ctrl)
	f.allowAll()

	// Mock expectations
	f.repo.EXPECT().GetByEmail(gomock.Any(), "nobody@example.com").Return(nil, nil)

	out, err := f.svc.Login(context.Background(), dto.LoginInput{
		Email:    "nobody@example.com",
		Password: "whatever",
	})

	assert.Equal(t, autherror.ErrInvalidCredentials, err)
	assert.Nil(t, out)
}

func TestUserService_Login_FifthFailureLocksAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newServiceFixture(t, ctrl)
	f.allowAll()

	user := &domain.User{
		ID:            "user-123",
		Email:         "test@example.com",
		PasswordHash:  hashFor(t, "Str0ng!Pass"),
		EmailVerified: true,
	}

	// Mock expectations
	f.repo.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)
	f.repo.EXPECT().RecordLoginFailure(gomock.Any(), user.ID).Return(5, nil)
	f.repo.EXPECT().SetLockout(gomock.Any(), user.ID, gomock.Any()).Return(nil)

	out, err := f.svc.Login(context.Background(), dto.LoginInput{
		Email:    user.Email,
		Password: "wrong-password",
	})

	assert.Equal(t, autherror.ErrInvalidCredentials, err)
	assert.Nil(t, out)
}

func TestUserService_Login_LockedAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newServiceFixture(t, ctrl)
	f.allowAll()

	until := time.Now().Add(10 * time.Minute)
	user := &domain.User{
		ID:            "user-123",
		Email:         "test@example.com",
		PasswordHash:  hashFor(t, "Str0ng!Pass"),
		EmailVerified: true,
		LockoutUntil:  &until,
	}

	// Mock expectations
	f.repo.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)

	out, err := f.svc.Login(context.Background(), dto.LoginInput{
		Email:    user.Email,
		Password: "Str0ng!Pass",
	})

	require.Error(t, err)
	var locked *autherror.AccountLockedError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, until, locked.Until)
	assert.Nil(t, out)
}

func TestUserService_Login_ExpiredLockoutAdmits(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newServiceFixture(t, ctrl)
	f.allowAll()

	until := time.Now().Add(-time.Minute)
	user := &domain.User{
		ID:            "user-123",
		Email:         "test@example.com",
		PasswordHash:  hashFor(t, "Str0ng!Pass"),
		EmailVerified: true,
		LockoutUntil:  &until,
	}

	// Mock expectations
	f.repo.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)
	f.repo.EXPECT().ClearLockout(gomock.Any(), user.ID).Return(nil)
	f.tokens.EXPECT().Generate(user.ID, user.Email).
		Return("access-token", "refresh-token", time.Now().Add(time.Hour), nil)
	f.repo.EXPECT().TouchActivity(gomock.Any(), user.ID, true).Return(nil)

	out, err := f.svc.Login(context.Background(), dto.LoginInput{
		Email:    user.Email,
		Password: "Str0ng!Pass",
	})

	require.NoError(t, err)
	assert.NotNil(t, out)
}

func TestUserService_Login_UnverifiedEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newServiceFixture(t, ctrl)
	f.allowAll()

	user := &domain.User{
		ID:           "user-123",
		Email:        "test@example.com",
		PasswordHash: hashFor(t, "Str0ng!Pass"),
	}

	// Mock expectations
	f.repo.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)

	out, err := f.svc.Login(context.Background(), dto.LoginInput{
		Email:    user.Email,
		Password: "Str0ng!Pass",
	})

	assert.Equal(t, autherror.ErrEmailNotVerified, err)
	assert.Nil(t, out)
}

func TestUserService_Refresh_RotatesPair(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newServiceFixture(t, ctrl)
	f.allowAll()

	user := &domain.User{ID: "user-123", Email: "test@example.com", EmailVerified: true}
	claims := &service.JWTCustomClaims{UserID: user.ID}

	// Mock expectations
	f.tokens.EXPECT().VerifyRefreshToken(gomock.Any(), "old-refresh").Return(claims, nil)
	f.repo.EXPECT().GetByID(gomock.Any(), user.ID).Return(user, nil)
	f.tokens.EXPECT().Generate(user.ID, user.Email).
		Return("new-access", "new-refresh", time.Now().Add(time.Hour), nil)
	f.tokens.EXPECT().Blacklist(gomock.Any(), "old-refresh").Return(nil)

	out, err := f.svc.Refresh(context.Background(), dto.RefreshInput{RefreshToken: "old-refresh"})

	require.NoError(t, err)
	assert.Equal(t, "new-access", out.AccessToken)
	assert.Equal(t, "new-refresh", out.RefreshToken)
}

func TestUserService_Refresh_InvalidToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newServiceFixture(t, ctrl)
	f.allowAll()

	// Mock expectations
	f.tokens.EXPECT().VerifyRefreshToken(gomock.Any(), "bad-token").
		Return(nil, autherror.ErrInvalidOrExpiredToken)

	out, err := f.svc.Refresh(context.Background(), dto.RefreshInput{RefreshToken: "bad-token"})

	assert.Equal(t, autherror.ErrInvalidRefreshToken, err)
	assert.Nil(t, out)
}

func TestUserService_Refresh_DeletedUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newServiceFixture(t, ctrl)
	f.allowAll()

	claims := &service.JWTCustomClaims{UserID: "gone-user"}

	// Mock expectations
	f.tokens.EXPECT().VerifyRefreshToken(gomock.Any(), "refresh-token").Return(claims, nil)
	f.repo.EXPECT().GetByID(gomock.Any(), "gone-user").Return(nil, nil)

	out, err := f.svc.Refresh(context.Background(), dto.RefreshInput{RefreshToken: "refresh-token"})

	assert.Equal(t, autherror.ErrInvalidRefreshToken, err)
	assert.Nil(t, out)
}

func TestUserService_Refresh_LockedUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newServiceFixture(t, ctrl)
	f.allowAll()

	until := time.Now().Add(10 * time.Minute)
	user := &domain.User{ID: "user-123", Email: "test@example.com", LockoutUntil: &until}
	claims := &service.JWTCustomClaims{UserID: user.ID}

	// Mock expectations
	f.tokens.EXPECT().VerifyRefreshToken(gomock.Any(), "refresh-token").Return(claims, nil)
	f.repo.EXPECT().GetByID(gomock.Any(), user.ID).Return(user, nil)

	out, err := f.svc.Refresh(context.Background(), dto.RefreshInput{RefreshToken: "refresh-token"})

	assert.Equal(t, autherror.ErrInvalidRefreshToken, err)
	assert.Nil(t, out)
}

func TestUserService_Logout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newServiceFixture(t, ctrl)
	f.allowAll()

	claims := &service.JWTCustomClaims{UserID: "user-123"}

	// Mock expectations
	f.tokens.EXPECT().VerifyAccessToken(gomock.Any(), "access-token").Return(claims, nil)
	f.repo.EXPECT().TouchActivity(gomock.Any(), "user-123", false).Return(nil)
	f.tokens.EXPECT().Blacklist(gomock.Any(), "access-token").Return(nil)

	err := f.svc.Logout(context.Background(), "access-token", "10.0.0.1")

	assert.NoError(t, err)
}

func TestUserService_Logout_StaleTokenStillBlacklisted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newServiceFixture(t, ctrl)
	f.allowAll()

	// Mock expectations
	f.tokens.EXPECT().VerifyAccessToken(gomock.Any(), "stale-token").
		Return(nil, autherror.ErrInvalidOrExpiredToken)
	f.tokens.EXPECT().Blacklist(gomock.Any(), "stale-token").Return(nil)

	err := f.svc.Logout(context.Background(), "stale-token", "10.0.0.1")

	assert.NoError(t, err)
}

func TestUserService_Logout_RateLimited(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newServiceFixture(t, ctrl)

	// Mock expectations: the token is never parsed and nothing is
	// blacklisted once the window is exhausted.
	f.limiter.EXPECT().Allow(gomock.Any(), "logout:10.0.0.1").
		Return(false, 30*time.Second, nil)

	err := f.svc.Logout(context.Background(), "access-token", "10.0.0.1")

	require.Error(t, err)
	var rle *autherror.RateLimitError
	require.ErrorAs(t, err, &rle)
	assert.Equal(t, 30*time.Second, rle.RetryAfter)
}

func TestUserService_VerifyEmail_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newServiceFixture(t, ctrl)

	user := &domain.User{ID: "user-123", Name: "Test User", Email: "test@example.com"}

	// Mock expectations
	f.repo.EXPECT().GetByVerificationToken(gomock.Any(), "verify-token").Return(user, nil)
	f.repo.EXPECT().MarkVerified(gomock.Any(), user.ID).Return(nil)
	f.mail.EXPECT().SendWelcomeEmail(gomock.Any(), user.Email, user.Name).Return(nil)

	out, err := f.svc.VerifyEmail(context.Background(), "verify-token")

	require.NoError(t, err)
	assert.True(t, out.EmailVerified)
}

func TestUserService_VerifyEmail_InvalidToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newServiceFixture(t, ctrl)

	// Mock expectations
	f.repo.EXPECT().GetByVerificationToken(gomock.Any(), "expired-token").Return(nil, nil)

	out, err := f.svc.VerifyEmail(context.Background(), "expired-token")

	assert.Equal(t, autherror.ErrInvalidOrExpiredToken, err)
	assert.Nil(t, out)
}

func TestUserService_RequestPasswordReset_KnownEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newServiceFixture(t, ctrl)
	f.allowAll()

	user := &domain.User{ID: "user-123", Name: "Test User", Email: "test@example.com"}

	// Mock expectations
	f.repo.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)
	f.repo.EXPECT().SetResetToken(gomock.Any(), user.ID, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, token string, expiresAt time.Time) error {
			assert.Len(t, token, 64)
			assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)
			return nil
		})
	f.mail.EXPECT().SendPasswordResetEmail(gomock.Any(), user.Email, user.Name, gomock.Any()).Return(nil)

	err := f.svc.RequestPasswordReset(context.Background(), dto.ForgotPasswordInput{Email: user.Email})

	assert.NoError(t, err)
}

func TestUserService_RequestPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newServiceFixture(t, ctrl)
	f.allowAll()

	// Mock expectations: no token write, no email, same nil result.
	f.repo.EXPECT().GetByEmail(gomock.Any(), "nobody@example.com").Return(nil, nil)

	err := f.svc.RequestPasswordReset(context.Background(), dto.ForgotPasswordInput{Email: "nobody@example.com"})

	assert.NoError(t, err)
}

func TestUserService_ResetPassword_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newServiceFixture(t, ctrl)

	user := &domain.User{ID: "user-123", Email: "test@example.com"}

	// Mock expectations
	f.repo.EXPECT().GetByResetToken(gomock.Any(), "reset-token").Return(user, nil)
	f.repo.EXPECT().UpdatePassword(gomock.Any(), user.ID, gomock.Any()).Return(nil)
	f.repo.EXPECT().ClearResetToken(gomock.Any(), user.ID).Return(nil)
	f.repo.EXPECT().ClearLockout(gomock.Any(), user.ID).Return(nil)

	err := f.svc.ResetPassword(context.Background(), dto.ResetPasswordInput{
		Token:       "reset-token",
		NewPassword: "N3w!Password",
	})

	assert.NoError(t, err)
}

func TestUserService_ResetPassword_WeakPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newServiceFixture(t, ctrl)

	err := f.svc.ResetPassword(context.Background(), dto.ResetPasswordInput{
		Token:       "reset-token",
		NewPassword: "weak",
	})

	var weak *autherror.WeakPasswordError
	assert.ErrorAs(t, err, &weak)
}

func TestUserService_ResetPassword_InvalidToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newServiceFixture(t, ctrl)

	// Mock expectations
	f.repo.EXPECT().GetByResetToken(gomock.Any(), "expired-token").Return(nil, nil)

	err := f.svc.ResetPassword(context.Background(), dto.ResetPasswordInput{
		Token:       "expired-token",
		NewPassword: "N3w!Password",
	})

	assert.Equal(t, autherror.ErrInvalidOrExpiredToken, err)
}

// Walks a fresh account through the full verification handoff: register,
// get rejected at login until the verification token is redeemed, then
// log in successfully. The repository mock shares one *domain.User so
// each step sees the state the previous step left behind.
func TestUserService_RegisterVerifyLoginFlow(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newServiceFixture(t, ctrl)
	f.allowAll()

	const password = "S3cure!Password"
	var stored *domain.User

	// Mock expectations
	f.repo.EXPECT().GetByEmail(gomock.Any(), "flow@example.com").
		DoAndReturn(func(ctx context.Context, email string) (*domain.User, error) {
			return stored, nil
		}).AnyTimes()
	f.repo.EXPECT().GetByUsername(gomock.Any(), "flowuser").Return(nil, nil)
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, u *domain.User) error {
			stored = u
			return nil
		})
	f.mail.EXPECT().SendVerificationEmail(gomock.Any(), "flow@example.com", "Flow User", gomock.Any()).Return(nil)

	reg, err := f.svc.Register(context.Background(), dto.RegisterInput{
		Name:      "Flow User",
		Username:  "flowuser",
		Email:     "flow@example.com",
		Password:  password,
		IPAddress: "10.0.0.1",
	})
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.NotEmpty(t, reg.VerificationToken)

	_, err = f.svc.Login(context.Background(), dto.LoginInput{
		Email:     "flow@example.com",
		Password:  password,
		IPAddress: "10.0.0.1",
	})
	assert.Equal(t, autherror.ErrEmailNotVerified, err)

	f.repo.EXPECT().GetByVerificationToken(gomock.Any(), reg.VerificationToken).
		DoAndReturn(func(ctx context.Context, token string) (*domain.User, error) {
			return stored, nil
		})
	f.repo.EXPECT().MarkVerified(gomock.Any(), stored.ID).Return(nil)
	f.mail.EXPECT().SendWelcomeEmail(gomock.Any(), "flow@example.com", "Flow User").Return(nil)

	verified, err := f.svc.VerifyEmail(context.Background(), reg.VerificationToken)
	require.NoError(t, err)
	assert.True(t, verified.EmailVerified)

	f.repo.EXPECT().ClearLockout(gomock.Any(), stored.ID).Return(nil)
	f.tokens.EXPECT().Generate(stored.ID, stored.Email).
		Return("access-token", "refresh-token", time.Now().Add(time.Hour), nil)
	f.repo.EXPECT().TouchActivity(gomock.Any(), stored.ID, true).Return(nil)

	out, err := f.svc.Login(context.Background(), dto.LoginInput{
		Email:     "flow@example.com",
		Password:  password,
		IPAddress: "10.0.0.1",
	})
	require.NoError(t, err)
	assert.Equal(t, "access-token", out.AccessToken)
	assert.Equal(t, "refresh-token", out.RefreshToken)
}
