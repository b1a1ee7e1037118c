package utils

import (
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func TestNewAccessToken(t *testing.T) {
	at, err := NewAccessToken("s3cret", 42, "ADMIN", 15)
	if err != nil {
		t.Fatal(err)
	}
	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(at.Token, claims, func(*jwt.Token) (any, error) { return []byte("s3cret"), nil })
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims["sub"] != float64(42) || claims["role"] != "ADMIN" {
		t.Fatalf("claims = %v", claims)
	}
	if _, err := NewAccessToken("", 1, "MEMBER", 15); !errors.Is(err, ErrEmptySecret) {
		t.Fatalf("empty secret error = %v", err)
	}
}

func TestRefreshToken(t *testing.T) {
	a, err := NewRefreshToken(7)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := NewRefreshToken(7)
	if len(a.Raw) != 96 || a.Raw == b.Raw {
		t.Fatalf("raw tokens %q %q", a.Raw, b.Raw)
	}
	if h := HashRefreshRaw(a.Raw); len(h) != 64 || h != HashRefreshRaw(a.Raw) || h == HashRefreshRaw(b.Raw) {
		t.Fatalf("hash %q", h)
	}
}

func TestPassword(t *testing.T) {
	h, err := HashPassword("hunter22", bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyPassword(h, "hunter22") || VerifyPassword(h, "hunter23") {
		t.Fatal("verify mismatch")
	}
	if _, err := HashPassword("abc", bcrypt.MinCost); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("short password error = %v", err)
	}
}

func TestNormalizePhoneNumber(t *testing.T) {
	got, err := NormalizePhoneNumber("098765 43210", "IN")
	if err != nil || got != "+919876543210" {
		t.Fatalf("NormalizePhoneNumber = %q, %v", got, err)
	}
	got, err = NormalizePhoneNumber("+1 650-253-0000", "IN")
	if err != nil || got != "+16502530000" {
		t.Fatalf("international = %q, %v", got, err)
	}
	if _, err := NormalizePhoneNumber("12", "IN"); err == nil {
		t.Fatal("short number accepted")
	}
}
