package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5, 60)
	user := &domain.User{ID: "u1", Role: domain.RoleAdmin}
	pair, err := tm.IssuePair(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := tm.ParseToken(pair.AccessToken, domain.TokenTypeAccess)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.UserID != "u1" || claims.Role != domain.RoleAdmin {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if _, err := tm.ParseToken(pair.RefreshToken, domain.TokenTypeAccess); !errors.Is(err, ErrWrongTokenType) {
		t.Fatalf("refresh token must not pass as access token, got %v", err)
	}
	if !pair.RefreshExpiresAt.After(pair.AccessExpiresAt) {
		t.Fatalf("refresh token should outlive access token")
	}
}

func TestParseTokenRejectsExpiredAndForeign(t *testing.T) {
	tm := NewTokenManager("secret", 1, 1)
	issued := time.Date(2025, 7, 23, 10, 0, 0, 0, time.UTC)
	tm.now = func() time.Time { return issued }
	token, _, err := tm.GenerateToken("u1", domain.RoleIT, domain.TokenTypeAccess)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	tm.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := tm.ParseToken(token, domain.TokenTypeAccess); err == nil {
		t.Fatalf("expected expired token to fail")
	}

	other := NewTokenManager("other-secret", 1, 1)
	other.now = func() time.Time { return issued }
	if _, err := other.ParseToken(token, domain.TokenTypeAccess); err == nil {
		t.Fatalf("expected signature mismatch")
	}
}

func TestHashTokenIsStable(t *testing.T) {
	if HashToken("abc") != HashToken("abc") || HashToken("abc") == HashToken("abd") {
		t.Fatalf("hash must be deterministic and distinguish inputs")
	}
	if len(HashToken("abc")) != 64 {
		t.Fatalf("expected hex sha256")
	}
}

func newProtectedApp(t *testing.T, users *memory.UserRepository, tm *TokenManager, roles ...domain.UserRole) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Code)
		},
	})
	mw := NewAuthMiddleware(tm, users)
	app.Get("/me", mw.Handle, RequireRole(roles...), func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.SendString(p.User.ID)
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	users := memory.NewUserRepository(nil)
	admin := &domain.User{FullName: "A", Email: "a@x.io", Username: "a", Role: domain.RoleAdmin, Status: domain.UserStatusActive}
	it := &domain.User{FullName: "B", Email: "b@x.io", Username: "b", Role: domain.RoleIT, Status: domain.UserStatusActive}
	for _, u := range []*domain.User{admin, it} {
		if err := users.Create(context.Background(), u); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	tm := NewTokenManager("secret", 5, 60)
	app := newProtectedApp(t, users, tm, domain.PurgeRoles...)

	adminPair, _ := tm.IssuePair(admin)
	itPair, _ := tm.IssuePair(it)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic abc", fiber.StatusUnauthorized},
		{"refresh token", "Bearer " + adminPair.RefreshToken, fiber.StatusUnauthorized},
		{"insufficient role", "Bearer " + itPair.AccessToken, fiber.StatusForbidden},
		{"admin", "Bearer " + adminPair.AccessToken, fiber.StatusOK},
	}
	for _, tt := range cases {
		req := httptest.NewRequest("GET", "/me", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if resp.StatusCode != tt.status {
			t.Fatalf("%s: status %d, want %d", tt.name, resp.StatusCode, tt.status)
		}
	}
}
