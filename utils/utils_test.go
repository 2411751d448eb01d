package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hemmelig", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword("hemmelig", hash) {
		t.Fatalf("expected password to match")
	}
	if CheckPassword("feil", hash) {
		t.Fatalf("wrong password must not match")
	}
}

func TestJWTRoundTrip(t *testing.T) {
	token, exp, err := GenerateJWT("admin", RoleAdmin, "secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("expiry must be in the future")
	}

	claims, err := ValidateJWT("Bearer "+token, "secret")
	if err != nil {
		t.Fatalf("ValidateJWT: %v", err)
	}
	if claims.Subject != "admin" || claims.Role != RoleAdmin {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := ValidateJWT(token, "other"); err == nil {
		t.Fatalf("expected signature error")
	}
}

func TestJWTExpired(t *testing.T) {
	token, _, err := GenerateJWT("admin", RoleAdmin, "secret", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if _, err := ValidateJWT(token, "secret"); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
	}
	for _, tt := range tests {
		if got := ExtractTokenFromHeader(tt.header); got != tt.want {
			t.Errorf("ExtractTokenFromHeader(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestTimeoutContexts(t *testing.T) {
	ctx, cancel := WithShortTimeout(context.Background())
	defer cancel()
	deadline, ok := ctx.Deadline()
	if !ok || time.Until(deadline) > ShortTimeout {
		t.Fatalf("expected a deadline within %s", ShortTimeout)
	}
	ctx, cancel = WithTimeout(context.Background())
	defer cancel()
	if _, ok := ctx.Deadline(); !ok {
		t.Fatalf("expected a deadline")
	}
}

func TestHashPasswordRejectsShortPasswords(t *testing.T) {
	if _, err := HashPassword("kort", bcrypt.MinCost); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
	if CheckPassword("hemmelig", "not-a-bcrypt-hash") {
		t.Fatalf("malformed hash must not match")
	}
}
