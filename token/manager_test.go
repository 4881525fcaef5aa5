package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func testSecret() []byte {
	return []byte("0123456789abcdef0123456789abcdef")
}

func newTestManager(t *testing.T, cfg Config) *Manager {
	t.Helper()
	if cfg.Secret == nil {
		cfg.Secret = testSecret()
	}
	if cfg.TTL == 0 {
		cfg.TTL = time.Hour
	}
	mgr, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return mgr
}

func TestNewManagerRejectsShortSecret(t *testing.T) {
	cases := [][]byte{nil, {}, []byte("short"), make([]byte, 31)}
	for _, secret := range cases {
		_, err := NewManager(Config{TTL: time.Hour, Secret: secret})
		if !errors.Is(err, ErrSecretTooShort) {
			t.Fatalf("secret len %d: expected ErrSecretTooShort, got %v", len(secret), err)
		}
	}
}

func TestNewManagerRejectsInvalidTTL(t *testing.T) {
	for _, ttl := range []time.Duration{0, -time.Hour} {
		if _, err := NewManager(Config{TTL: ttl, Secret: testSecret()}); err == nil {
			t.Fatalf("TTL %v: expected error", ttl)
		}
	}
}

func TestIssueParseRoundTrip(t *testing.T) {
	mgr := newTestManager(t, Config{Issuer: "sessiongate-test"})

	before := time.Now()
	raw, err := mgr.Issue("u-1", "ana@example.com", true)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := mgr.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UID != "u-1" {
		t.Fatalf("uid mismatch: %q", claims.UID)
	}
	if claims.Email != "ana@example.com" {
		t.Fatalf("email mismatch: %q", claims.Email)
	}
	if !claims.Onboarded {
		t.Fatal("onboarded flag lost in round trip")
	}
	if claims.ID == "" {
		t.Fatal("expected non-empty jti")
	}
	if claims.IssuedAt == nil || claims.IssuedAt.Time.Before(before.Add(-time.Second)) {
		t.Fatalf("unexpected iat: %v", claims.IssuedAt)
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.Time.After(claims.IssuedAt.Time) {
		t.Fatalf("unexpected exp: %v", claims.ExpiresAt)
	}
}

func TestIssueRejectsEmptyUID(t *testing.T) {
	mgr := newTestManager(t, Config{})
	if _, err := mgr.Issue("", "ana@example.com", false); err == nil {
		t.Fatal("expected error for empty uid")
	}
}

func TestParseRejectsTamperedToken(t *testing.T) {
	mgr := newTestManager(t, Config{})
	raw, err := mgr.Issue("u-1", "ana@example.com", false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 token segments, got %d", len(parts))
	}

	// Flip one character in each segment in turn; verification must fail
	// every time rather than yield a different valid principal.
	for i := range parts {
		mutated := make([]string, 3)
		copy(mutated, parts)
		seg := []byte(mutated[i])
		if seg[0] == 'A' {
			seg[0] = 'B'
		} else {
			seg[0] = 'A'
		}
		mutated[i] = string(seg)

		if _, err := mgr.Parse(strings.Join(mutated, ".")); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("segment %d: expected ErrTokenInvalid, got %v", i, err)
		}
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	issuer := newTestManager(t, Config{})
	verifier := newTestManager(t, Config{Secret: []byte("ffffffffffffffffffffffffffffffff")})

	raw, err := issuer.Issue("u-1", "ana@example.com", false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Parse(raw); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	short := newTestManager(t, Config{TTL: time.Millisecond})
	raw, err := short.Issue("u-1", "ana@example.com", false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	if _, err := short.Parse(raw); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for expired token, got %v", err)
	}
}

func TestParseRejectsIssuerMismatch(t *testing.T) {
	issuer := newTestManager(t, Config{Issuer: "app-a"})
	verifier := newTestManager(t, Config{Issuer: "app-b"})

	raw, err := issuer.Issue("u-1", "ana@example.com", false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Parse(raw); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestParseRejectsMalformedInput(t *testing.T) {
	mgr := newTestManager(t, Config{})
	cases := []string{
		"",
		"garbage",
		"a.b",
		"a.b.c",
		"eyJhbGciOiJub25lIn0.eyJ1aWQiOiJ4In0.",
	}
	for _, input := range cases {
		if _, err := mgr.Parse(input); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("input %q: expected ErrTokenInvalid, got %v", input, err)
		}
	}
}
