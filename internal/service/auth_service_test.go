package service

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func newAuthService(t *testing.T) (*AuthService, *memory.UserRepository) {
	t.Helper()
	users := memory.NewUserRepository(memory.Clock(func() time.Time { return testNow }))
	cfg := config.Config{Auth: config.AuthConfig{
		JWTSecret:              "test-secret",
		AccessTokenTTLMinutes:  15,
		RefreshTokenTTLMinutes: 60,
		BcryptCost:             4,
	}}
	return NewAuthService(cfg, AuthDependencies{UserRepo: users}), users
}

var registration = RegisterInput{
	FullName:     "Ayesha Khan",
	Email:        "Ayesha@Example.com",
	Username:     "ayesha",
	Password:     "s3cret-pass",
	Department:   "IT",
	Role:         "it",
	MobileNumber: "+92 300 0000000",
}

func TestRegister(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, registration)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "ayesha@example.com" || user.PasswordHash == registration.Password || user.Role != "IT" {
		t.Fatalf("unexpected user %+v", user)
	}

	_, err = svc.Register(ctx, registration)
	assertCode(t, err, apperrors.CodeConflict)

	dupUsername := registration
	dupUsername.Email = "other@example.com"
	_, err = svc.Register(ctx, dupUsername)
	assertCode(t, err, apperrors.CodeConflict)

	badRole := registration
	badRole.Email, badRole.Username, badRole.Role = "x@example.com", "x", "Janitor"
	_, err = svc.Register(ctx, badRole)
	assertCode(t, err, apperrors.CodeValidation)

	_, err = svc.Register(ctx, RegisterInput{Email: "y@example.com"})
	assertCode(t, err, apperrors.CodeValidation)
}

func TestLoginRefreshLogout(t *testing.T) {
	svc, users := newAuthService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, registration); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := svc.Login(ctx, "ayesha@example.com", "wrong", nil)
	assertCode(t, err, apperrors.CodeUnauthorized)
	_, err = svc.Login(ctx, "nobody@example.com", "s3cret-pass", nil)
	assertCode(t, err, apperrors.CodeUnauthorized)

	login, err := svc.Login(ctx, "AYESHA@example.com", "s3cret-pass", strPtr("device-token"))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	stored, _ := users.GetByID(ctx, login.User.ID)
	if stored.PushToken == nil || *stored.PushToken != "device-token" {
		t.Fatalf("push token not saved")
	}
	if stored.RefreshTokenHash == nil || *stored.RefreshTokenHash == login.Tokens.RefreshToken {
		t.Fatalf("refresh token must be stored hashed")
	}
	if stored.LastSeenAt == nil {
		t.Fatalf("last seen not recorded")
	}

	_, err = svc.Refresh(ctx, login.Tokens.AccessToken)
	assertCode(t, err, apperrors.CodeUnauthorized)

	rotated, err := svc.Refresh(ctx, login.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rotated.Tokens.RefreshToken == login.Tokens.RefreshToken {
		t.Fatalf("refresh token must rotate")
	}
	_, err = svc.Refresh(ctx, login.Tokens.RefreshToken)
	assertCode(t, err, apperrors.CodeUnauthorized)

	if err := svc.Logout(ctx, login.User.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	_, err = svc.Refresh(ctx, rotated.Tokens.RefreshToken)
	assertCode(t, err, apperrors.CodeUnauthorized)
}
