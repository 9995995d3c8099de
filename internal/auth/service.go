package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"time"

	"github.com/frahmantamala/personnel-records/internal"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type CredentialRepository interface {
	GetCredentials(ctx context.Context, username string) (*Credentials, error)
	GetActorByID(ctx context.Context, id int64) (*Actor, error)
	UpdatePassword(ctx context.Context, accountID int64, passwordHash string, mustReset bool) error
	TouchLastLogin(ctx context.Context, accountID int64, at time.Time) error
}

// Service is the main auth service with dependencies
type Service struct {
	repo           CredentialRepository
	tokenGenerator TokenGenerator
	session        SessionPolicy
	bcryptCost     int
	logger         *slog.Logger
}

// NewService creates a new auth service. session may be nil, in which case
// the generator's default access token lifetime applies.
func NewService(repo CredentialRepository, tokenGen TokenGenerator, session SessionPolicy, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		session:        session,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

// NewJWTTokenGenerator creates a new JWT token generator
func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	if accessTTL <= 0 {
		accessTTL = 60 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 24 * 7 * time.Hour
	}
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
	}
}

// Authenticate validates credentials and returns tokens
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	creds, err := s.repo.GetCredentials(ctx, dto.Username)
	if err != nil {
		if !errors.Is(err, ErrAccountNotFound) {
			s.logger.ErrorContext(ctx, "failed to load credentials", "username", dto.Username, "error", err)
			return AuthTokens{}, internal.NewInternalError("failed to authenticate", err)
		}
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(dto.Password)); err != nil {
		s.logger.WarnContext(ctx, "login rejected: wrong password", "account_id", creds.AccountID)
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if !creds.Active {
		s.logger.WarnContext(ctx, "login rejected: account inactive", "account_id", creds.AccountID)
		return AuthTokens{}, internal.ErrAccountInactive
	}

	tokens, err := s.issueTokens(ctx, creds.AccountID)
	if err != nil {
		return AuthTokens{}, err
	}
	tokens.Role = creds.Role
	tokens.MustResetPassword = creds.MustResetPassword

	if err := s.repo.TouchLastLogin(ctx, creds.AccountID, time.Now()); err != nil {
		s.logger.WarnContext(ctx, "failed to record last login", "account_id", creds.AccountID, "error", err)
	}

	s.logger.InfoContext(ctx, "login succeeded", "account_id", creds.AccountID, "role", creds.Role)
	return tokens, nil
}

// RefreshTokens validates refresh token and returns new tokens
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	actor, err := s.ResolveActor(ctx, claims)
	if err != nil {
		return AuthTokens{}, err
	}
	if !actor.Active {
		return AuthTokens{}, internal.ErrAccountInactive
	}

	tokens, err := s.issueTokens(ctx, actor.ID)
	if err != nil {
		return AuthTokens{}, err
	}
	tokens.Role = actor.Role
	tokens.MustResetPassword = actor.MustResetPassword
	return tokens, nil
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateAccessToken(tokenString)
}

// ResolveActor loads the account named by validated claims.
func (s *Service) ResolveActor(ctx context.Context, claims *Claims) (*Actor, error) {
	id, err := strconv.ParseInt(claims.AccountID, 10, 64)
	if err != nil {
		return nil, internal.ErrInvalidToken
	}
	actor, err := s.repo.GetActorByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, internal.ErrInvalidToken
		}
		return nil, internal.NewInternalError("failed to load account", err)
	}
	return actor, nil
}

// ChangePassword verifies the current password and clears any forced reset.
func (s *Service) ChangePassword(ctx context.Context, actor *Actor, dto ChangePasswordDTO) error {
	if !actor.Authenticated() {
		return internal.ErrUnauthenticated
	}
	if err := dto.Validate(); err != nil {
		return err
	}

	creds, err := s.repo.GetCredentials(ctx, actor.Username)
	if err != nil {
		return internal.NewInternalError("failed to load credentials", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(dto.CurrentPassword)); err != nil {
		return internal.NewValidationFieldError("current_password", "current password is incorrect", internal.ErrCodeInvalidCredentials)
	}

	hash, err := s.HashPassword(dto.NewPassword)
	if err != nil {
		return internal.NewInternalError("failed to hash password", err)
	}
	if err := s.repo.UpdatePassword(ctx, actor.ID, hash, false); err != nil {
		return internal.NewInternalError("failed to update password", err)
	}

	s.logger.InfoContext(ctx, "password changed", "account_id", actor.ID)
	return nil
}

func (s *Service) issueTokens(ctx context.Context, accountID int64) (AuthTokens, error) {
	var ttl time.Duration
	if s.session != nil {
		ttl = s.session.SessionTimeout(ctx)
	}

	subject := strconv.FormatInt(accountID, 10)
	accessToken, expiresAt, err := s.tokenGenerator.GenerateAccessToken(subject, ttl)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to issue access token", err)
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(subject)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to issue refresh token", err)
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// GenerateAccessToken creates a new access token. A zero ttl uses the configured default.
func (j *JWTTokenGenerator) GenerateAccessToken(accountID string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = j.AccessTokenTTL
	}
	expiresAt := time.Now().Add(ttl)
	token, err := j.sign(accountID, tokenTypeAccess, expiresAt, j.AccessTokenSecret)
	return token, expiresAt, err
}

// GenerateRefreshToken creates a new refresh token
func (j *JWTTokenGenerator) GenerateRefreshToken(accountID string) (string, error) {
	return j.sign(accountID, tokenTypeRefresh, time.Now().Add(j.RefreshTokenTTL), j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) ValidateAccessToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, tokenTypeAccess, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, tokenTypeRefresh, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) sign(accountID, tokenType string, expiresAt time.Time, secret []byte) (string, error) {
	now := time.Now()
	claims := &Claims{
		AccountID: accountID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   accountID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (j *JWTTokenGenerator) validate(tokenString, tokenType string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != tokenType {
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	return HashPassword(password, s.bcryptCost)
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

const credentialAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

// GenerateOneTimePassword returns a random credential drawn from an
// alphabet without look-alike characters.
func GenerateOneTimePassword(length int) (string, error) {
	out := make([]byte, length)
	max := big.NewInt(int64(len(credentialAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = credentialAlphabet[n.Int64()]
	}
	return string(out), nil
}
