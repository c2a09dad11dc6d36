package auth

import (
	"strings"
	"testing"
	"time"
)

func TestSignVerifyRoundtrip(t *testing.T) {
	token, err := Sign("secret", "team-1", time.Hour)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	teamID, err := Verify("secret", token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if teamID != "team-1" {
		t.Fatalf("expected team-1, got %q", teamID)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	token, err := Sign("secret", "team-1", time.Hour)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	// Flip a byte in the payload half.
	parts := strings.Split(token, ".")
	payload := []byte(parts[0])
	payload[0] ^= 1
	tampered := string(payload) + "." + parts[1]

	if _, err := Verify("secret", tampered); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for tampered payload, got %v", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := Sign("secret", "team-1", time.Hour)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if _, err := Verify("other-secret", token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	token, err := Sign("secret", "team-1", -time.Minute)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if _, err := Verify("secret", token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	for _, token := range []string{"", "notatoken", "a.b.c", "onlypayload."} {
		if _, err := Verify("secret", token); err != ErrInvalidToken {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", token, err)
		}
	}
}

func TestSignRequiresSecret(t *testing.T) {
	if _, err := Sign("", "team-1", time.Hour); err == nil {
		t.Fatalf("expected error when signing without a secret")
	}
}
