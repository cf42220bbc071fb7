package identity

import (
	"errors"
	"testing"
	"time"
)

func TestJWTProviderRoundTrip(t *testing.T) {
	p, err := NewJWTProvider("test-signing-key")
	if err != nil {
		t.Fatalf("NewJWTProvider failed: %v", err)
	}

	token, err := p.GenerateToken("user-42", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	userID, err := p.UserIDFromToken(token)
	if err != nil {
		t.Fatalf("UserIDFromToken failed: %v", err)
	}
	if userID != "user-42" {
		t.Errorf("userID = %q, want user-42", userID)
	}
}

func TestJWTProviderRejectsExpiredToken(t *testing.T) {
	p, _ := NewJWTProvider("test-signing-key")

	token, err := p.GenerateToken("user-42", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	_, err = p.UserIDFromToken(token)
	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("error type = %T, want *AuthenticationError", err)
	}
}

func TestJWTProviderRejectsWrongKey(t *testing.T) {
	issuer, _ := NewJWTProvider("issuer-key")
	verifier, _ := NewJWTProvider("different-key")

	token, err := issuer.GenerateToken("user-42", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := verifier.UserIDFromToken(token); err == nil {
		t.Error("expected verification failure with mismatched key")
	}
}

func TestJWTProviderRejectsGarbage(t *testing.T) {
	p, _ := NewJWTProvider("test-signing-key")
	if _, err := p.UserIDFromToken("not.a.token"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestNewJWTProviderEmptyKey(t *testing.T) {
	if _, err := NewJWTProvider(""); err == nil {
		t.Error("expected error for empty signing key")
	}
}

func TestStaticProvider(t *testing.T) {
	p := &StaticProvider{UserID: "dev-user"}
	userID, err := p.UserIDFromToken("ignored")
	if err != nil {
		t.Fatalf("UserIDFromToken failed: %v", err)
	}
	if userID != "dev-user" {
		t.Errorf("userID = %q", userID)
	}

	empty := &StaticProvider{}
	if _, err := empty.UserIDFromToken(""); err == nil {
		t.Error("expected error for empty static user id")
	}
}
