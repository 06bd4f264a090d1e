package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/hireloop/sessiongate/internal/domain"
)

func TestAuthenticate_RoundTrip(t *testing.T) {
	a := NewAuthenticator("test-secret")
	who := domain.Identity{ID: 42, Role: domain.RoleInterviewer}

	token, err := a.Issue(who, 15*time.Minute)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	got, err := a.Authenticate(token)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if got != who {
		t.Errorf("Authenticate() = %+v, want %+v", got, who)
	}
}

func TestAuthenticate_Failures(t *testing.T) {
	a := NewAuthenticator("test-secret")
	other := NewAuthenticator("wrong-secret")

	valid, _ := a.Issue(domain.Identity{ID: 1, Role: domain.RoleHR}, time.Minute)
	expired, _ := a.Issue(domain.Identity{ID: 1, Role: domain.RoleHR}, -time.Minute)
	foreign, _ := other.Issue(domain.Identity{ID: 1, Role: domain.RoleHR}, time.Minute)

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"malformed token", "not.a.jwt"},
		{"expired token", expired},
		{"bad signature", foreign},
		{"truncated token", valid[:len(valid)-4]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Authenticate(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Authenticate() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestAuthenticate_ZeroUserID(t *testing.T) {
	a := NewAuthenticator("test-secret")
	token, _ := a.Issue(domain.Identity{ID: 0, Role: domain.RoleHR}, time.Minute)

	if _, err := a.Authenticate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Authenticate() error = %v, want ErrInvalidToken for zero user id", err)
	}
}
