package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const VerificationTokenBytes = 32 // 256 bits

// GenerateVerificationToken returns a high-entropy random token value,
// hex-encoded for use in emailed links.
func GenerateVerificationToken() (string, error) {
	bytes := make([]byte, VerificationTokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate verification token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// HashToken returns the hex-encoded SHA-256 digest of a plain token value.
// Only digests are stored; redemption re-hashes the presented value.
func HashToken(plainToken string) string {
	sum := sha256.Sum256([]byte(plainToken))
	return hex.EncodeToString(sum[:])
}
