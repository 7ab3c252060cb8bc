package auth

import (
	"testing"
	"time"

	"github.com/mistamayor/berrymart-v1/internal/common/config"
)

func TestGenerateAndParseAccessToken(t *testing.T) {
	cfg := config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret",
		Issuer:    "berrymart",
		Audience:  "berrymart",
	}

	token, exp, err := GenerateAccessToken(cfg, Identity{
		Subject:  "42",
		Username: "mary_manager",
		FullName: "Mary Manager",
		Role:     "Manager",
	}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}
	if exp.Before(time.Now()) {
		t.Fatalf("expected exp in future")
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.Subject != "42" {
		t.Fatalf("subject mismatch: %s", claims.Subject)
	}
	if claims.Username != "mary_manager" || claims.Role != "Manager" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if claims.FullName != "Mary Manager" {
		t.Fatalf("full name mismatch: %s", claims.FullName)
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	cfg := config.AuthConfig{JWTSecret: "secret-a", Issuer: "berrymart"}
	token, _, err := GenerateAccessToken(cfg, Identity{Subject: "1", Username: "admin", Role: "Admin"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	bad := config.AuthConfig{JWTSecret: "secret-b", Issuer: "berrymart"}
	if _, err := ParseAccessToken(bad, token); err == nil {
		t.Fatalf("expected parse with wrong secret to fail")
	}
}

func TestParseAccessTokenRejectsWrongIssuer(t *testing.T) {
	cfg := config.AuthConfig{JWTSecret: "secret", Issuer: "someone-else"}
	token, _, err := GenerateAccessToken(cfg, Identity{Subject: "1", Username: "admin", Role: "Admin"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	cfg.Issuer = "berrymart"
	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatalf("expected issuer mismatch to fail")
	}
}
