package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/polkiloo/parceltrack/internal/domain/model"
)

func signedToken(s *HMACStrategy, payload string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(payload + tokenSeparator + s.sign(payload)))
}

func TestNewHMACStrategy_DefaultTTL(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{})
	if strategy == nil {
		t.Fatal("expected strategy instance")
	}
	if string(strategy.secret) != "secret" {
		t.Fatalf("unexpected secret: %q", string(strategy.secret))
	}
	if strategy.ttl != 24*time.Hour {
		t.Fatalf("unexpected ttl: %s", strategy.ttl)
	}
}

func TestNewHMACStrategy_CustomTTL(t *testing.T) {
	ttl := 2 * time.Hour
	strategy := NewHMACStrategy("secret", Options{TTL: ttl})
	if strategy.ttl != ttl {
		t.Fatalf("unexpected ttl: %s", strategy.ttl)
	}
}

func TestHMACStrategy_IssueAndParse(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{TTL: time.Minute})

	cases := []struct {
		name  string
		in    Claims
		want  Claims
		admin bool
	}{
		{"client", Claims{UserID: 42, Role: model.RoleClient}, Claims{UserID: 42, Role: model.RoleClient}, false},
		{"admin", Claims{UserID: 7, Role: model.RoleAdmin}, Claims{UserID: 7, Role: model.RoleAdmin}, true},
		{"empty role defaults to client", Claims{UserID: 9}, Claims{UserID: 9, Role: model.RoleClient}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token, err := strategy.IssueToken(tc.in)
			if err != nil {
				t.Fatalf("issue token: %v", err)
			}
			if strings.ContainsAny(token, "+/=") {
				t.Fatalf("token is not url safe: %q", token)
			}
			claims, err := strategy.ParseToken(token)
			if err != nil {
				t.Fatalf("parse token: %v", err)
			}
			if claims != tc.want || claims.IsAdmin() != tc.admin {
				t.Fatalf("unexpected claims: %+v", claims)
			}
		})
	}
}

func TestHMACStrategy_IssueRejectsInvalidUser(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{})
	if _, err := strategy.IssueToken(Claims{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestHMACStrategy_ParseInvalidTokens(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{})
	future := time.Now().Add(time.Minute).Unix()

	cases := map[string]string{
		"invalid base64":  "not base64!",
		"too few parts":   base64.RawURLEncoding.EncodeToString([]byte("only|two")),
		"invalid user id": signedToken(strategy, fmt.Sprintf("abc|client|%d", future)),
		"zero user id":    signedToken(strategy, fmt.Sprintf("0|client|%d", future)),
		"unknown role":    signedToken(strategy, fmt.Sprintf("10|root|%d", future)),
		"invalid expiry":  signedToken(strategy, "10|client|not-a-number"),
		"expired":         signedToken(strategy, fmt.Sprintf("10|client|%d", time.Now().Add(-time.Minute).Unix())),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := strategy.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestHMACStrategy_ParseTamperedRole(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{TTL: time.Minute})
	token, err := strategy.IssueToken(Claims{UserID: 7, Role: model.RoleClient})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		t.Fatalf("decode token: %v", err)
	}
	parts := strings.Split(string(raw), tokenSeparator)
	if len(parts) != 4 {
		t.Fatalf("unexpected parts count: %d", len(parts))
	}
	parts[1] = string(model.RoleAdmin)
	tampered := base64.RawURLEncoding.EncodeToString([]byte(strings.Join(parts, tokenSeparator)))
	if _, err := strategy.ParseToken(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestHMACStrategy_UsesInjectedClock(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	strategy := NewHMACStrategy("secret", Options{TTL: time.Hour, Now: func() time.Time { return now }})
	token, err := strategy.IssueToken(Claims{UserID: 1, Role: model.RoleClient})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	now = now.Add(2 * time.Hour)
	if _, err := strategy.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token, got %v", err)
	}
}

func TestHMACStrategy_Name(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{})
	if strategy.Name() != "hmac" {
		t.Fatalf("unexpected name: %s", strategy.Name())
	}
}
