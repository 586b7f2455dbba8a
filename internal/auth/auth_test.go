package auth

import (
	"context"
	"testing"
	"time"

	"github.com/dkeye/Chat/internal/domain"
	"github.com/dkeye/Chat/internal/storage"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	return NewService(store, NewTokenManager("test-secret", time.Hour))
}

func TestRegisterAndLogin(t *testing.T) {
	s := setupService(t)

	user, err := s.Register(context.Background(), "alice", "Alice", "correct horse")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.DisplayName != "Alice" {
		t.Errorf("expected display name Alice, got %q", user.DisplayName)
	}
	if user.Avatar == "" {
		t.Error("expected a default avatar")
	}

	token, logged, err := s.Login(context.Background(), "alice", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.Username != "alice" {
		t.Errorf("unexpected user: %+v", logged)
	}

	identity, err := s.Resolve(token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if identity != "alice" {
		t.Errorf("expected identity alice, got %q", identity)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := setupService(t)
	if _, err := s.Register(context.Background(), "alice", "", "correct horse"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := s.Login(context.Background(), "alice", "wrong"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	// Unknown user looks exactly like a bad password.
	if _, _, err := s.Login(context.Background(), "ghost", "whatever"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	s := setupService(t)

	if _, err := s.Register(context.Background(), "", "", "correct horse"); err != domain.ErrUsernameEmpty {
		t.Fatalf("expected ErrUsernameEmpty, got %v", err)
	}
	if _, err := s.Register(context.Background(), "alice", "", "short"); err != ErrWeakPassword {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if _, err := s.Register(context.Background(), "alice", "", "pw"); err != ErrWeakPassword {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestRegisterDefaultsDisplayName(t *testing.T) {
	s := setupService(t)
	user, err := s.Register(context.Background(), "bob", "", "correct horse")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.DisplayName != "bob" {
		t.Errorf("expected display name defaulted to username, got %q", user.DisplayName)
	}
}

func TestTokenTamperRejected(t *testing.T) {
	m := NewTokenManager("secret-a", time.Hour)
	token, err := m.Issue("alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	other := NewTokenManager("secret-b", time.Hour)
	if _, err := other.Verify(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken on wrong secret, got %v", err)
	}
	if _, err := m.Verify(token + "x"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken on mangled token, got %v", err)
	}
}

func TestTokenExpiry(t *testing.T) {
	m := NewTokenManager("secret", -time.Minute)
	token, err := m.Issue("alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(token); err != ErrInvalidToken {
		t.Fatalf("expected expired token rejected, got %v", err)
	}
}
