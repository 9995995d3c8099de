package auth

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/personnel-records/internal"
	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Credentials is what login needs from storage.
type Credentials struct {
	AccountID         int64
	Username          string
	PasswordHash      string
	Role              Role
	Active            bool
	MustResetPassword bool
}

// TokenGenerator creates and validates signed tokens.
type TokenGenerator interface {
	GenerateAccessToken(accountID string, ttl time.Duration) (token string, expiresAt time.Time, err error)
	GenerateRefreshToken(accountID string) (token string, err error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
}

// SessionPolicy supplies the access token lifetime configured by administrators.
type SessionPolicy interface {
	SessionTimeout(ctx context.Context) time.Duration
}

type AuthTokens struct {
	AccessToken       string    `json:"access_token"`
	RefreshToken      string    `json:"refresh_token"`
	ExpiresAt         time.Time `json:"expires_at"`
	Role              Role      `json:"role"`
	MustResetPassword bool      `json:"must_reset_password"`
}

// Claims represents JWT token claims
type Claims struct {
	AccountID string `json:"account_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

var (
	ErrAccountNotFound = errors.New("account not found")

	errMissingToken = internal.NewUnauthenticatedError("missing authorization token", internal.ErrCodeInvalidToken)
)
