package service

import (
	"errors"
	"testing"
	"time"
)

func TestJWTServiceRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Minute)

	token, err := svc.IssueAccessToken("user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	claims, err := svc.ParseAccessToken(token)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("expected subject user-1, got %q", claims.Subject)
	}
	if claims.TokenType != "access" {
		t.Fatalf("expected token type access, got %q", claims.TokenType)
	}
}

func TestJWTServiceRejectsExpired(t *testing.T) {
	svc := &JWTService{secret: []byte("test-secret"), ttl: -time.Minute, issuer: "chat-gateway"}

	token, err := svc.IssueAccessToken("user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := svc.ParseAccessToken(token); !errors.Is(err, ErrJWTExpired) {
		t.Fatalf("expected ErrJWTExpired, got %v", err)
	}
}

func TestJWTServiceRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTService("secret-a", time.Minute)
	verifier := NewJWTService("secret-b", time.Minute)

	token, err := issuer.IssueAccessToken("user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := verifier.ParseAccessToken(token); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid, got %v", err)
	}
}

func TestJWTServiceRejectsGarbage(t *testing.T) {
	svc := NewJWTService("test-secret", time.Minute)

	if _, err := svc.ParseAccessToken("not-a-token"); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid, got %v", err)
	}
	if _, err := svc.ParseAccessToken(""); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid for empty token, got %v", err)
	}
}
