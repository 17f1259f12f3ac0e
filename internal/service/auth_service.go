package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

var errInvalidCredentials = apperrors.NewUnauthorized("invalid credentials")

// AuthService coordinates directory registration and the token lifecycle.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	rt         Runtime
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Runtime  Runtime
}

// RegisterInput describes a new directory user.
type RegisterInput struct {
	FullName     string
	Email        string
	Username     string
	Password     string
	Department   string
	Role         string
	MobileNumber string
}

// LoginResult is the authenticated user and a fresh token pair.
type LoginResult struct {
	User   *domain.User
	Tokens *domain.TokenPair
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes, cfg.Auth.RefreshTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
		rt:         deps.Runtime,
	}
}

// Register creates an active directory user. Email and username are unique.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if missing := missingFields(
		"full_name", input.FullName,
		"email", input.Email,
		"username", input.Username,
		"password", input.Password,
		"department", input.Department,
		"role", input.Role,
	); len(missing) > 0 {
		return nil, apperrors.NewMissingFields(missing...)
	}
	role, ok := domain.ParseUserRole(input.Role)
	if !ok {
		return nil, apperrors.NewInvalidField("role", "unknown role")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"field": "email"})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		FullName:     strings.TrimSpace(input.FullName),
		Email:        email,
		Username:     strings.TrimSpace(input.Username),
		MobileNumber: strings.TrimSpace(input.MobileNumber),
		Department:   strings.TrimSpace(input.Department),
		Role:         role,
		Status:       domain.UserStatusActive,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.rt.logger().Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// Login verifies credentials, records the push token when supplied and
// issues a token pair. Only the refresh token's hash is stored.
func (s *AuthService) Login(ctx context.Context, email, password string, pushToken *string) (*LoginResult, error) {
	if missing := missingFields("email", email, "password", password); len(missing) > 0 {
		return nil, apperrors.NewMissingFields(missing...)
	}
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errInvalidCredentials
		}
		return nil, apperrors.MapError(err)
	}
	if user.Status != domain.UserStatusActive {
		return nil, errInvalidCredentials
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, errInvalidCredentials
	}
	if token := optionalString(pushToken); token != nil {
		user.PushToken = token
	}
	return s.issue(ctx, user)
}

// Refresh rotates the token pair when refreshToken matches the stored hash.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperrors.NewMissingFields("refresh_token")
	}
	claims, err := s.tokenMgr.ParseToken(refreshToken, domain.TokenTypeRefresh)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid refresh token")
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid refresh token")
		}
		return nil, apperrors.MapError(err)
	}
	if user.RefreshTokenHash == nil || user.Status != domain.UserStatusActive {
		return nil, apperrors.NewUnauthorized("invalid refresh token")
	}
	presented := auth.HashToken(refreshToken)
	if subtle.ConstantTimeCompare([]byte(presented), []byte(*user.RefreshTokenHash)) != 1 {
		return nil, apperrors.NewUnauthorized("invalid refresh token")
	}
	return s.issue(ctx, user)
}

// Logout forgets the stored refresh token so it can no longer be rotated.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("unknown user")
		}
		return apperrors.MapError(err)
	}
	user.RefreshTokenHash = nil
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issue(ctx context.Context, user *domain.User) (*LoginResult, error) {
	pair, err := s.tokenMgr.IssuePair(user)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	hash := auth.HashToken(pair.RefreshToken)
	now := s.rt.now()
	user.RefreshTokenHash = &hash
	user.LastSeenAt = &now
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return &LoginResult{User: user, Tokens: pair}, nil
}
