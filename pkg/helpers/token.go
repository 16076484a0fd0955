package helpers

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// ResetTokenBytes is the entropy of a password reset token (256 bits).
const ResetTokenBytes = 32

// GenerateResetToken returns a random hex token and its SHA-256 digest.
// Only the digest may be persisted.
func GenerateResetToken() (plain string, hash string, err error) {
	b := make([]byte, ResetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	plain = hex.EncodeToString(b)
	return plain, HashResetToken(plain), nil
}

// HashResetToken is the one-way function applied to reset tokens before storage and lookup.
func HashResetToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
