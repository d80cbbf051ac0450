package service

//go:generate mockgen -destination=../../mocks/mock_token_generator.go -package=mocks github.com/Cryptovee252/my-best-life-platform-sub001/internal/auth/service TokenGenerator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Cryptovee252/my-best-life-platform-sub001/internal/auth/domain"
	autherror "github.com/Cryptovee252/my-best-life-platform-sub001/internal/errors"
	authconstant "github.com/Cryptovee252/my-best-life-platform-sub001/pkg/constant"
)

// TokenGenerator is the token authority contract consumed by UserService.
type TokenGenerator interface {
	Generate(userID, email string) (accessToken, refreshToken string, accessExpiry time.Time, err error)
	VerifyAccessToken(ctx context.Context, tokenString string) (*JWTCustomClaims, error)
	VerifyRefreshToken(ctx context.Context, tokenString string) (*JWTCustomClaims, error)
	Blacklist(ctx context.Context, tokenString string) error
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
}

// TokenService issues and verifies HS256 access/refresh pairs. A token is
// valid iff its signature verifies, it is unexpired, its token_type claim
// matches, and its jti is absent from the blacklist.
type TokenService struct {
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration

	blacklist domain.TokenBlacklist
}

type JWTCustomClaims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	Email     string `json:"email,omitempty"`
	TokenType string `json:"token_type"`
}

func NewTokenService(accessSecret, refreshSecret string, accessMinutes, refreshMinutes int,
	blacklist domain.TokenBlacklist) *TokenService {
	return &TokenService{
		AccessTokenSecret:  accessSecret,
		RefreshTokenSecret: refreshSecret,
		AccessTokenExpiry:  time.Duration(accessMinutes) * time.Minute,
		RefreshTokenExpiry: time.Duration(refreshMinutes) * time.Minute,
		blacklist:          blacklist,
	}
}

func (ts *TokenService) Generate(userID, email string) (string, string, time.Time, error) {
	now := time.Now()

	accessClaims := JWTCustomClaims{
		UserID:    userID,
		Email:     email,
		TokenType: authconstant.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   userID,
		},
	}

	refreshClaims := JWTCustomClaims{
		UserID:    userID,
		TokenType: authconstant.TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.RefreshTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   userID,
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(ts.AccessTokenSecret))
	if err != nil {
		return "", "", time.Time{}, err
	}

	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256,
		refreshClaims).SignedString([]byte(ts.RefreshTokenSecret))
	if err != nil {
		return "", "", time.Time{}, err
	}

	return accessToken, refreshToken, now.Add(ts.AccessTokenExpiry), nil
}

func (ts *TokenService) GetAccessTokenExpiry() time.Duration {
	return ts.AccessTokenExpiry
}

func (ts *TokenService) GetRefreshTokenExpiry() time.Duration {
	return ts.RefreshTokenExpiry
}

// VerifyAccessToken validates signature, expiry, token type, and blacklist
// membership for an access token.
func (ts *TokenService) VerifyAccessToken(ctx context.Context, tokenString string) (*JWTCustomClaims, error) {
	return ts.verify(ctx, tokenString, ts.AccessTokenSecret, authconstant.TokenTypeAccess)
}

// VerifyRefreshToken does the same for a refresh token.
func (ts *TokenService) VerifyRefreshToken(ctx context.Context, tokenString string) (*JWTCustomClaims, error) {
	return ts.verify(ctx, tokenString, ts.RefreshTokenSecret, authconstant.TokenTypeRefresh)
}

func (ts *TokenService) verify(ctx context.Context, tokenString, secret, wantType string) (*JWTCustomClaims, error) {
	claims, err := parseClaims(tokenString, secret, true)
	if err != nil {
		return nil, err
	}

	if claims.TokenType != wantType {
		return nil, autherror.ErrInvalidOrExpiredToken
	}

	revoked, err := ts.blacklist.Contains(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("blacklist lookup failed: %w", err)
	}
	if revoked {
		return nil, autherror.ErrInvalidOrExpiredToken
	}

	return claims, nil
}

// Blacklist revokes a token. It is idempotent, and it accepts tokens that
// are expired but correctly signed so that logout with a stale access
// token still lands the jti in the revocation set. Tokens that fail
// signature or structural checks are ignored: they can never verify, so
// there is nothing to revoke.
func (ts *TokenService) Blacklist(ctx context.Context, tokenString string) error {
	claims, err := parseClaims(tokenString, ts.AccessTokenSecret, false)
	if err != nil {
		// Retry with the refresh secret so either kind can be revoked.
		claims, err = parseClaims(tokenString, ts.RefreshTokenSecret, false)
	}
	if err != nil || claims.ID == "" {
		return nil
	}

	expiresAt := time.Now().Add(ts.RefreshTokenExpiry)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return ts.blacklist.Add(ctx, &domain.BlacklistedToken{
		JTI:       claims.ID,
		UserID:    claims.UserID,
		TokenType: claims.TokenType,
		ExpiresAt: expiresAt,
	})
}

func parseClaims(tokenString, secret string, checkExpiry bool) (*JWTCustomClaims, error) {
	claims := &JWTCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})

	if err != nil {
		if !checkExpiry && errors.Is(err, jwt.ErrTokenExpired) && token != nil {
			return claims, nil
		}
		return nil, autherror.ErrInvalidOrExpiredToken
	}

	if !token.Valid {
		return nil, autherror.ErrInvalidOrExpiredToken
	}

	return claims, nil
}
