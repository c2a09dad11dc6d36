// Package auth signs and verifies team session tokens. Tokens are
// base64url(payload) + "." + base64url(hmac-sha256(payload)) with an
// expiry claim.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// ErrInvalidToken covers malformed, tampered and expired tokens alike;
// callers get no detail beyond "not authenticated".
var ErrInvalidToken = errors.New("invalid team session token")

type claims struct {
	TeamID string `json:"teamId"`
	Iat    int64  `json:"iat"`
	Exp    int64  `json:"exp"`
}

// Sign issues a token for the given team id.
func Sign(secret, teamID string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("missing team session secret")
	}

	now := time.Now().Unix()
	payload, err := json.Marshal(claims{TeamID: teamID, Iat: now, Exp: now + int64(ttl.Seconds())})
	if err != nil {
		return "", err
	}

	encoded := base64.RawURLEncoding.EncodeToString(payload)
	return encoded + "." + signature(secret, encoded), nil
}

// Verify checks a token and returns the embedded team id.
func Verify(secret, token string) (string, error) {
	if secret == "" || token == "" {
		return "", ErrInvalidToken
	}

	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return "", ErrInvalidToken
	}

	expected := signature(secret, parts[0])
	if !hmac.Equal([]byte(parts[1]), []byte(expected)) {
		return "", ErrInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", ErrInvalidToken
	}

	var c claims
	if err := json.Unmarshal(payload, &c); err != nil {
		return "", ErrInvalidToken
	}
	if c.TeamID == "" || c.Exp == 0 || time.Now().Unix() > c.Exp {
		return "", ErrInvalidToken
	}
	return c.TeamID, nil
}

func signature(secret, encodedPayload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(encodedPayload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
