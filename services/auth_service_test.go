package services

import (
	"context"
	"errors"
	"testing"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	t.Setenv("JWT_SECRET", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
	svc := NewAuthService(newTestDB(t))
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Username: " alice ", Email: "a@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Username != "alice" || user.PasswordHash == "password123" {
		t.Fatalf("got %+v", user)
	}

	if _, err := svc.Register(ctx, RegisterRequest{Username: "alice", Password: "password123"}); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("got %v, want ErrUsernameTaken", err)
	}
	if _, err := svc.Register(ctx, RegisterRequest{Username: "al", Email: "bad", Password: "short"}); err == nil {
		t.Fatalf("expected validation errors")
	} else if ve, ok := AsValidationErrors(err); !ok || len(ve) != 3 {
		t.Fatalf("got %v, want 3 field errors", err)
	}

	if _, err := svc.Authenticate(ctx, LoginRequest{Username: "alice", Password: "wrong-pass"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("got %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Authenticate(ctx, LoginRequest{Username: "nobody", Password: "password123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("got %v, want ErrInvalidCredentials", err)
	}
	got, err := svc.Authenticate(ctx, LoginRequest{Username: "alice", Password: "password123"})
	if err != nil || got.ID != user.ID {
		t.Fatalf("authenticate: got %+v (%v)", got, err)
	}
}

func TestTokensRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
	db := newTestDB(t)
	svc := NewAuthService(db)
	ctx := context.Background()
	user := createUser(t, db, "alice")

	pair, err := svc.IssueTokens(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	got, err := svc.UserFromAccessToken(ctx, pair.Access)
	if err != nil || got.ID != user.ID {
		t.Fatalf("access: got %+v (%v)", got, err)
	}
	if _, err := svc.UserFromAccessToken(ctx, pair.Refresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh used as access: got %v, want ErrInvalidToken", err)
	}

	access, err := svc.Refresh(ctx, pair.Refresh)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, err := svc.UserFromAccessToken(ctx, access); err != nil {
		t.Fatalf("refreshed access: %v", err)
	}
	if _, err := svc.Refresh(ctx, pair.Access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("access used as refresh: got %v, want ErrInvalidToken", err)
	}

	if err := db.Delete(user).Error; err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if _, err := svc.UserFromAccessToken(ctx, pair.Access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("deleted user: got %v, want ErrInvalidToken", err)
	}
}
