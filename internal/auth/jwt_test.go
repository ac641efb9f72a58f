package auth

import (
	"strings"
	"testing"

	"retail-backend/internal/config"
	"retail-backend/internal/models"
)

func testManager(secret string) *JWTManager {
	cfg := &config.Config{}
	cfg.JWT.Secret = secret
	cfg.JWT.ExpirationHours = 1
	cfg.JWT.Issuer = "retail-backend"
	return NewJWTManager(cfg)
}

func TestGenerateAndValidateToken(t *testing.T) {
	m := testManager("test-secret")
	user := &models.User{ID: 42, Email: "clerk@example.com", Role: "employee", IsActive: true}

	token, err := m.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "clerk@example.com" || claims.Role != "employee" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.Issuer != "retail-backend" {
		t.Errorf("issuer = %q", claims.Issuer)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := testManager("secret-a").GenerateToken(&models.User{ID: 1, Email: "a@b.c", Role: "admin"})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := testManager("secret-b").ValidateToken(token); err == nil {
		t.Error("token signed with a different secret was accepted")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	m := testManager("test-secret")
	for _, bad := range []string{"", "not-a-token", strings.Repeat("x", 64)} {
		if _, err := m.ValidateToken(bad); err == nil {
			t.Errorf("ValidateToken(%q) accepted", bad)
		}
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("password stored in the clear")
	}
	if !VerifyPassword(hash, "s3cret-pass") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "wrong-pass") {
		t.Error("wrong password accepted")
	}
}
