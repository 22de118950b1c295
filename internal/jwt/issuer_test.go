package jwt

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-test-secret-test-secret!"

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestIssuer(t *testing.T, c *clock, opts ...Option) *Issuer {
	t.Helper()
	opts = append(opts, WithTimeFunc(c.now))
	iss, err := NewIssuer(testSecret, opts...)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	return iss
}

func TestNewIssuer_SecretValidation(t *testing.T) {
	t.Parallel()
	if _, err := NewIssuer(""); !errors.Is(err, ErrSecretRequired) {
		t.Fatalf("want ErrSecretRequired, got %v", err)
	}
	if _, err := NewIssuer("fallback-secret-key"); !errors.Is(err, ErrSecretTooShort) {
		t.Fatalf("want ErrSecretTooShort, got %v", err)
	}
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	t.Parallel()
	c := &clock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	iss := newTestIssuer(t, c)

	cases := []struct {
		uid   int64
		email string
	}{
		{1, "a@example.com"},
		{42, "someone+tag@example.org"},
		{1 << 40, "big@example.com"},
	}
	for _, tc := range cases {
		tok, exp, err := iss.Issue(tc.uid, tc.email)
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		if !exp.Equal(c.t.Add(DefaultTTL)) {
			t.Fatalf("exp = %v", exp)
		}
		claims, err := iss.Verify(context.Background(), tok)
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if claims.UserID != tc.uid || claims.Email != tc.email {
			t.Fatalf("claims = %+v", claims)
		}
	}
}

func TestVerify_ExpiredAfterTTL(t *testing.T) {
	t.Parallel()
	c := &clock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	iss := newTestIssuer(t, c)

	tok, _, err := iss.Issue(7, "x@example.com")
	if err != nil {
		t.Fatal(err)
	}

	c.t = c.t.Add(23 * time.Hour)
	if _, err := iss.Verify(context.Background(), tok); err != nil {
		t.Fatalf("still valid within ttl: %v", err)
	}

	c.t = c.t.Add(2 * time.Hour)
	if _, err := iss.Verify(context.Background(), tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken after ttl, got %v", err)
	}
}

func TestVerify_RejectsTamperedAndMalformed(t *testing.T) {
	t.Parallel()
	c := &clock{t: time.Now()}
	iss := newTestIssuer(t, c)
	tok, _, _ := iss.Issue(1, "a@example.com")

	other, err := NewIssuer(strings.Repeat("z", 40), WithTimeFunc(c.now))
	if err != nil {
		t.Fatal(err)
	}
	foreign, _, _ := other.Issue(1, "a@example.com")

	parts := strings.Split(tok, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	// alg none no debe aceptarse
	none := jwtv5.NewWithClaims(jwtv5.SigningMethodNone, SessionClaims{UserID: 1, Email: "a@example.com", Type: TypeSession})
	noneTok, _ := none.SignedString(jwtv5.UnsafeAllowNoneSignatureType)

	for name, bad := range map[string]string{
		"foreign secret": foreign,
		"tampered sig":   tampered,
		"malformed":      "not.a.jwt",
		"empty":          "",
		"alg none":       noneTok,
	} {
		if _, err := iss.Verify(context.Background(), bad); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: want ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestAdminTokens_AreNotSessionTokens(t *testing.T) {
	t.Parallel()
	c := &clock{t: time.Now()}
	iss := newTestIssuer(t, c, WithAdminTTL(30*time.Minute))

	admin, exp, err := iss.IssueAdmin()
	if err != nil {
		t.Fatal(err)
	}
	if !exp.Equal(c.t.UTC().Add(30 * time.Minute)) {
		t.Fatalf("admin exp = %v", exp)
	}
	if _, err := iss.VerifyAdmin(context.Background(), admin); err != nil {
		t.Fatalf("VerifyAdmin: %v", err)
	}
	if _, err := iss.Verify(context.Background(), admin); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("admin token accepted as session: %v", err)
	}

	session, _, _ := iss.Issue(5, "u@example.com")
	if _, err := iss.VerifyAdmin(context.Background(), session); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("session token accepted as admin: %v", err)
	}
}

func TestRejectReason(t *testing.T) {
	t.Parallel()
	if got := rejectReason(jwtv5.ErrTokenExpired); got != "expired" {
		t.Fatalf("got %q", got)
	}
	if got := rejectReason(jwtv5.ErrTokenSignatureInvalid); got != "bad_signature" {
		t.Fatalf("got %q", got)
	}
	if got := rejectReason(jwtv5.ErrTokenMalformed); got != "malformed" {
		t.Fatalf("got %q", got)
	}
}
