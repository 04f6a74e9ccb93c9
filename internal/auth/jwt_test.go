package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndVerify(t *testing.T) {
	m := NewManager("super-secret", time.Hour)
	in := Identity{AccountID: "u1", Email: "a@x.com", Name: "A", IsAdmin: true}

	tok, expiresAt, err := m.GenerateAccessToken(in)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expiresAt should be in the future, got %v", expiresAt)
	}

	claims, err := m.VerifyAccessToken(tok)
	if err != nil {
		t.Fatalf("VerifyAccessToken error: %v", err)
	}
	if claims.Identity() != in {
		t.Fatalf("identity mismatch: got %+v want %+v", claims.Identity(), in)
	}
	if claims.JTI == "" {
		t.Fatalf("expected a jti")
	}
}

func TestVerifyExpired(t *testing.T) {
	m := NewManager("secret", time.Minute)
	old := m.WithClock(func() time.Time { return time.Now().Add(-time.Hour) })

	tok, _, err := old.GenerateAccessToken(Identity{AccountID: "u1"})
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	if _, err := m.VerifyAccessToken(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	m := NewManager("secret", time.Hour)

	claims := Claims{
		AccountID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}

	if _, err := m.VerifyAccessToken(tok); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for HS512, got %v", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	m := NewManager("k", time.Hour)

	if _, err := m.VerifyAccessToken("not.a.jwt"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
