package utils

import (
	"errors"
	"testing"
	"time"

	"fantasy-doubles-api/packages/auth/models"
)

var secret = []byte("test-secret")

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(secret, 42, "admin@example.com", models.Roles{models.RoleAdmin}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "admin@example.com" {
		t.Fatalf("claims = (%d, %q), want (42, admin@example.com)", claims.UserID, claims.Email)
	}
	if !claims.Roles.HasRole(models.RoleAdmin) {
		t.Fatalf("roles = %v, want admin", claims.Roles)
	}
	if claims.Subject != "42" {
		t.Fatalf("subject = %q, want 42", claims.Subject)
	}
}

func TestParseTokenRejects(t *testing.T) {
	fallback, err := GenerateToken(secret, 1, "", models.Roles{models.RoleAdmin}, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	// A non-positive ttl falls back to the default expiry.
	if _, err := ParseToken(secret, fallback); err != nil {
		t.Fatalf("ParseToken(default ttl): %v", err)
	}

	valid, err := GenerateToken(secret, 1, "", nil, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	tests := map[string]struct {
		secret []byte
		token  string
	}{
		"wrong secret": {[]byte("other"), valid},
		"garbage":      {secret, "not-a-token"},
		"empty":        {secret, ""},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToken(tt.secret, tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("err = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestGenerateTokenRequiresSecret(t *testing.T) {
	if _, err := GenerateToken(nil, 1, "", nil, time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
