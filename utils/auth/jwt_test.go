package auth

import (
	"testing"
	"time"
)

func testManager(expiry time.Duration) *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret: "test-secret-key",
		Expiry: expiry,
		Issuer: "escolar-api-test",
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	m := testManager(time.Hour)

	token, jti, err := m.GenerateToken(5, "admin@escolar.mx", "administrador", 3)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if jti == "" {
		t.Fatal("empty JTI")
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 5 || claims.Email != "admin@escolar.mx" || claims.Role != "administrador" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.TokenVersion != 3 {
		t.Errorf("TokenVersion = %d, want 3", claims.TokenVersion)
	}
	if claims.ID != jti {
		t.Errorf("claims.ID = %q, want %q", claims.ID, jti)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, _, err := testManager(time.Hour).GenerateToken(1, "a@b.mx", "alumno", 0)
	if err != nil {
		t.Fatal(err)
	}

	other := NewJWTManager(JWTConfig{Secret: "another-secret", Expiry: time.Hour, Issuer: "x"})
	if _, err := other.ValidateToken(token); err != ErrInvalidToken {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}

func TestValidateTokenExpired(t *testing.T) {
	m := testManager(-time.Minute)

	token, _, err := m.GenerateToken(1, "a@b.mx", "alumno", 0)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m.ValidateToken(token); err != ErrExpiredToken {
		t.Errorf("got %v, want ErrExpiredToken", err)
	}
}

func TestGetTokenExpiry(t *testing.T) {
	m := testManager(time.Hour)

	token, _, err := m.GenerateToken(1, "a@b.mx", "maestro", 0)
	if err != nil {
		t.Fatal(err)
	}

	expiry, err := m.GetTokenExpiry(token)
	if err != nil {
		t.Fatalf("GetTokenExpiry: %v", err)
	}

	until := time.Until(expiry)
	if until < 59*time.Minute || until > 61*time.Minute {
		t.Errorf("expiry %v from now, want about an hour", until)
	}
}
