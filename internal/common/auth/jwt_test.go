package auth

import (
	"testing"
	"time"

	"github.com/YardLink/YardLink/internal/common/config"
	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAccessToken(t *testing.T) {
	cfg := config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret",
		Issuer:    "yardlink",
		Audience:  "yardlink",
	}

	token, exp, err := GenerateAccessToken(cfg, "u-gate-1", []string{"gate"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}
	if exp.Before(time.Now()) {
		t.Fatalf("expected exp in future")
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || parsed == nil || !parsed.Valid {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != "u-gate-1" {
		t.Fatalf("subject mismatch: %s", claims.Subject)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "gate" {
		t.Fatalf("roles mismatch: %#v", claims.Roles)
	}
}

func TestGenerateAccessTokenRequiresSecret(t *testing.T) {
	_, _, err := GenerateAccessToken(config.AuthConfig{}, "u-1", nil, time.Hour)
	if err == nil {
		t.Fatalf("expected error with empty secret")
	}
}
