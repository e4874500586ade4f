package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// inviteTokenBytes is the entropy of an invitation token (256 bits).
const inviteTokenBytes = 32

// GenerateInviteToken returns a URL-safe random token. The plaintext is
// handed to the caller once and never persisted.
func GenerateInviteToken() (string, error) {
	buf := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashToken returns the hex-encoded SHA-256 digest of a token. All
// storage and lookups go through the digest; the database never sees
// the plaintext.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
