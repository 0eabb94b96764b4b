package service

import (
	"context"
	"testing"

	"github.com/spec-kit/maintenance-service/internal/config"
	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/repository"
)

func newAuthService(users repository.UserRepository) *AuthService {
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            4,
		},
	}
	return NewAuthService(cfg, users)
}

func TestRegisterCreatesTenant(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	svc := newAuthService(users)

	user, token, _, err := svc.Register(context.Background(), "alice", "secret")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != domain.RoleTenant {
		t.Fatalf("role = %q, want tenant", user.Role)
	}
	if user.PasswordHash == "secret" {
		t.Fatal("password stored in plaintext")
	}
	if token == "" {
		t.Fatal("no token issued")
	}

	claims, err := svc.TokenManager().ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("claims uid = %d, want %d", claims.UserID, user.ID)
	}
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	svc := newAuthService(users)
	ctx := context.Background()

	if _, _, _, err := svc.Register(ctx, "alice", "secret"); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, _, _, err := svc.Register(ctx, "alice", "other")
	if err == nil {
		t.Fatal("duplicate username accepted")
	}
	if code := errCode(t, err); code != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %s", code)
	}
}

func TestRegisterRejectsBlankInput(t *testing.T) {
	svc := newAuthService(repository.NewMemoryUserRepository())

	for _, tc := range []struct{ username, password string }{
		{"", "secret"},
		{"   ", "secret"},
		{"alice", ""},
	} {
		_, _, _, err := svc.Register(context.Background(), tc.username, tc.password)
		if err == nil {
			t.Fatalf("Register(%q, %q) accepted", tc.username, tc.password)
		}
	}
}

func TestLogin(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	svc := newAuthService(users)
	ctx := context.Background()

	if _, _, _, err := svc.Register(ctx, "alice", "secret"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	user, token, _, err := svc.Login(ctx, "alice", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.Username != "alice" || token == "" {
		t.Fatalf("login returned user=%q token=%q", user.Username, token)
	}

	if _, _, _, err := svc.Login(ctx, "alice", "wrong"); err == nil {
		t.Fatal("wrong password accepted")
	} else if code := errCode(t, err); code != "UNAUTHORIZED" {
		t.Fatalf("expected UNAUTHORIZED, got %s", code)
	}

	if _, _, _, err := svc.Login(ctx, "nobody", "secret"); err == nil {
		t.Fatal("unknown user accepted")
	} else if code := errCode(t, err); code != "UNAUTHORIZED" {
		t.Fatalf("expected UNAUTHORIZED, got %s", code)
	}
}
