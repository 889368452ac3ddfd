package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// NewResetToken generates a single-use password-reset token. The plaintext is
// emailed to the user exactly once; only the sha256 hex digest is persisted.
func NewResetToken() (plaintext, digest string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	plaintext = hex.EncodeToString(b)
	return plaintext, HashResetToken(plaintext), nil
}

// HashResetToken returns the sha256 hex digest stored and compared server-side.
func HashResetToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
