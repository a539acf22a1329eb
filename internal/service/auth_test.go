package service

import (
	"errors"
	"testing"

	"petlovers/internal/config"
	"petlovers/internal/model"
)

func TestAuthService_TokenRoundtrip(t *testing.T) {
	svc := NewAuthService(&config.Config{JWTSecret: "test-secret", AccessTokenMaxAge: 3600})

	token, err := svc.GenerateToken(42)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	userID, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if userID != 42 {
		t.Errorf("expected user id 42, got %d", userID)
	}
}

func TestAuthService_ExpiredToken(t *testing.T) {
	// Negative max age issues tokens that are already expired.
	svc := NewAuthService(&config.Config{JWTSecret: "test-secret", AccessTokenMaxAge: -60})

	token, err := svc.GenerateToken(42)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	_, err = svc.VerifyToken(token)
	if !errors.Is(err, model.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestAuthService_InvalidToken(t *testing.T) {
	issuer := NewAuthService(&config.Config{JWTSecret: "issuer-secret", AccessTokenMaxAge: 3600})
	verifier := NewAuthService(&config.Config{JWTSecret: "other-secret", AccessTokenMaxAge: 3600})

	token, err := issuer.GenerateToken(42)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	// Wrong signing secret.
	if _, err := verifier.VerifyToken(token); !errors.Is(err, model.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid for wrong secret, got %v", err)
	}

	// Not a token at all.
	if _, err := issuer.VerifyToken("not.a.token"); !errors.Is(err, model.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid for garbage, got %v", err)
	}
}
